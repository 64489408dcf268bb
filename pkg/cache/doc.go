// Package cache stores Blitzr API responses in Redis.
//
// Entries are keyed by endpoint and sorted query parameters. The API key is
// never part of a cache key, so every client sharing a Redis instance shares
// the cached pages. Expiry comes from the response's Cache-Control max-age
// or Expires header, falling back to DefaultTTL.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{
//		Endpoint: "artist/releases/",
//		Query:    url.Values{"slug": {"radiohead"}, "start": {"0"}, "limit": {"10"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		entry, _ = cache.ResponseToEntry(resp)
//		_ = manager.Set(ctx, key, entry)
//	}
//
// # Conditional Requests
//
// Entries that carry an ETag or Last-Modified value stay in Redis for
// StaleRetention after they expire. Lookup returns such a stale entry so the
// client can revalidate it with If-None-Match / If-Modified-Since; a 304
// answer is served from the entry with EntryToResponse and its expiry is
// refreshed with UpdateTTL.
//
// # Metrics
//
//   - blitzr_cache_hits_total
//   - blitzr_cache_misses_total
//   - blitzr_cache_size_bytes
//   - blitzr_cache_conditional_requests_total
//   - blitzr_cache_304_responses_total
//   - blitzr_cache_errors_total{operation}
package cache
