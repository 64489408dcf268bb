package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket whose limits can be changed at runtime.
type Limiter struct {
	limiter *rate.Limiter
	mu      sync.RWMutex
}

// NewLimiter allows rps requests per second with bursts of up to burst requests.
// A non-positive rps disables limiting.
func NewLimiter(rps float64, burst int) *Limiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := time.Now()
	err := l.limiter.Wait(ctx)
	limiterWaitSeconds.Observe(time.Since(start).Seconds())
	return err
}

// UpdateLimits changes the rate and burst.
func (l *Limiter) UpdateLimits(rps float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	l.limiter.SetLimit(limit)
	l.limiter.SetBurst(burst)
}

// Limit returns the current rate in requests per second.
func (l *Limiter) Limit() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return float64(l.limiter.Limit())
}
