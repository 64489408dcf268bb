package cache

import (
	"net/http"
	"time"
)

// Entry is a cached API response.
type Entry struct {
	Data         []byte      `json:"data"`
	ETag         string      `json:"etag,omitempty"`
	Expires      time.Time   `json:"expires"`
	LastModified time.Time   `json:"last_modified,omitempty"`
	StatusCode   int         `json:"status_code"`
	Headers      http.Header `json:"headers"`
	CachedAt     time.Time   `json:"cached_at"`
}

// IsExpired reports whether the entry is stale.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration, or 0 once expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
