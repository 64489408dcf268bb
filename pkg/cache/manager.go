package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss means the key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry means the stored value could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Manager reads and writes entries in Redis.
type Manager struct {
	redis *redis.Client
}

// NewManager creates a cache manager backed by redisClient.
// It panics on a nil client.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{redis: redisClient}
}

// StaleRetention is how long an expired entry with an ETag or Last-Modified
// value stays in Redis for revalidation.
const StaleRetention = time.Hour

// Get returns a fresh entry for key, or ErrCacheMiss.
func (m *Manager) Get(ctx context.Context, key Key) (*Entry, error) {
	entry, err := m.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry.IsExpired() {
		return nil, ErrCacheMiss
	}
	return entry, nil
}

// Lookup returns the stored entry for key even when it is expired, so the
// caller can revalidate it. Only fresh entries count as hits.
func (m *Manager) Lookup(ctx context.Context, key Key) (*Entry, error) {
	// Get data from Redis
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	// Unmarshal entry
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	// Stale entries are returned for revalidation but count as misses
	if entry.IsExpired() {
		CacheMisses.Inc()
	} else {
		CacheHits.Inc()
	}
	return &entry, nil
}

// Set stores entry until its Expires time, plus StaleRetention when the
// entry can be revalidated. Expired entries are skipped.
func (m *Manager) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	// Calculate TTL
	ttl := entry.TTL()
	if ttl <= 0 {
		// Already expired, don't cache
		return nil
	}
	if ShouldMakeConditionalRequest(entry) {
		ttl += StaleRetention
	}

	// Marshal entry
	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	// Store in Redis with TTL
	if err := m.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	// Update cache size metric
	CacheSize.Add(float64(len(data)))
	return nil
}

// Delete removes the entry for key.
func (m *Manager) Delete(ctx context.Context, key Key) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// UpdateTTL moves the expiry of a stored entry, typically after a 304.
func (m *Manager) UpdateTTL(ctx context.Context, key Key, newExpires time.Time) error {
	// Get existing entry, stale or not
	entry, err := m.Lookup(ctx, key)
	if err != nil {
		return err
	}

	// Update expires time
	entry.Expires = newExpires

	// Re-save with new TTL
	return m.Set(ctx, key, entry)
}
