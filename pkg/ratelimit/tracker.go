package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Response headers carrying the quota.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// ErrQuotaExhausted is returned when the remaining quota is below the
// critical threshold and the window has not reset yet.
var ErrQuotaExhausted = errors.New("ratelimit: quota exhausted")

// Config configures a Tracker.
type Config struct {
	Thresholds Thresholds

	// ThrottleDelay is the pause applied below the warning threshold.
	ThrottleDelay time.Duration

	// Namespace scopes the Redis keys, usually derived from the API key.
	Namespace string
}

// DefaultConfig returns default thresholds with a one second throttle delay.
func DefaultConfig() Config {
	return Config{
		Thresholds:    DefaultThresholds(),
		ThrottleDelay: time.Second,
		Namespace:     "default",
	}
}

// stateStore persists the quota state. load returns nil when nothing is stored.
type stateStore interface {
	load(ctx context.Context) (*QuotaState, error)
	save(ctx context.Context, state *QuotaState) error
}

// Tracker follows the API quota and gates requests.
type Tracker struct {
	store  stateStore
	config Config
	logger zerolog.Logger
}

// NewTracker stores state in Redis when redisClient is non-nil and in
// process memory otherwise.
func NewTracker(redisClient *redis.Client, cfg Config, logger zerolog.Logger) *Tracker {
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}

	var store stateStore = &memoryStore{}
	if redisClient != nil {
		store = newRedisStore(redisClient, cfg.Namespace)
	}

	return &Tracker{
		store:  store,
		config: cfg,
		logger: logger,
	}
}

// GetState returns the stored state, or a healthy default when none exists.
func (t *Tracker) GetState(ctx context.Context) (*QuotaState, error) {
	state, err := t.store.load(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		t.logger.Debug().Msg("No quota state stored, assuming healthy")
		return &QuotaState{
			Remaining:  100,
			ResetAt:    time.Now().Add(60 * time.Second),
			LastUpdate: time.Now(),
			IsHealthy:  true,
		}, nil
	}
	state.UpdateHealth(t.config.Thresholds)
	return state, nil
}

// UpdateFromHeaders records the quota reported by a response. Responses
// without quota headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	resetStr := headers.Get(HeaderReset)
	if resetStr == "" {
		return fmt.Errorf("%s header missing", HeaderReset)
	}
	resetSeconds, err := strconv.Atoi(resetStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderReset, err)
	}

	now := time.Now()
	state := &QuotaState{
		Remaining:  remain,
		ResetAt:    now.Add(time.Duration(resetSeconds) * time.Second),
		LastUpdate: now,
	}
	state.UpdateHealth(t.config.Thresholds)

	if err := t.store.save(ctx, state); err != nil {
		return fmt.Errorf("store quota state: %w", err)
	}

	quotaRemaining.Set(float64(remain))

	switch {
	case state.NeedsCriticalBlock(t.config.Thresholds):
		t.logger.Error().
			Int("quota_remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("Quota critical, requests will be blocked")
	case state.NeedsThrottling(t.config.Thresholds):
		t.logger.Warn().
			Int("quota_remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("Quota low, requests will be throttled")
	default:
		t.logger.Debug().
			Int("quota_remaining", remain).
			Bool("is_healthy", state.IsHealthy).
			Msg("Quota state updated")
	}

	return nil
}

// ShouldAllowRequest returns false when the quota is critical. Below the
// warning threshold it delays the caller before allowing the request.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get quota state: %w", err)
	}

	if state.NeedsCriticalBlock(t.config.Thresholds) {
		t.logger.Error().
			Int("quota_remaining", state.Remaining).
			Dur("reset_in", state.TimeUntilReset()).
			Msg("Quota critical, blocking request")
		quotaBlocksTotal.Inc()
		return false, nil
	}

	if state.NeedsThrottling(t.config.Thresholds) && t.config.ThrottleDelay > 0 {
		t.logger.Warn().
			Int("quota_remaining", state.Remaining).
			Dur("delay", t.config.ThrottleDelay).
			Msg("Quota low, throttling request")
		quotaThrottlesTotal.Inc()

		timer := time.NewTimer(t.config.ThrottleDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	return true, nil
}

// memoryStore keeps the state of a single process.
type memoryStore struct {
	mu    sync.Mutex
	state *QuotaState
}

func (m *memoryStore) load(context.Context) (*QuotaState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	s := *m.state
	return &s, nil
}

func (m *memoryStore) save(_ context.Context, state *QuotaState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *state
	m.state = &s
	return nil
}

// redisStore shares the state between processes.
type redisStore struct {
	redis *redis.Client
	key   string
}

func newRedisStore(client *redis.Client, namespace string) *redisStore {
	return &redisStore{
		redis: client,
		key:   "blitzr:quota:" + namespace,
	}
}

func (r *redisStore) load(ctx context.Context) (*QuotaState, error) {
	data, err := r.redis.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var state QuotaState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode quota state: %w", err)
	}
	return &state, nil
}

func (r *redisStore) save(ctx context.Context, state *QuotaState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode quota state: %w", err)
	}

	// Keep the key a little past the reset so a stale window expires on its own.
	ttl := state.TimeUntilReset() + time.Minute
	if err := r.redis.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
