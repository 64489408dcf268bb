// Package ratelimit keeps Blitzr API usage within the account quota.
//
// Two mechanisms cooperate. Limiter is a local token bucket that spaces out
// requests of one process. Tracker follows the quota the server reports in
// the X-RateLimit-Remaining and X-RateLimit-Reset headers and, when a Redis
// client is configured, shares that state between all processes using the
// same API key.
package ratelimit

import (
	"time"
)

// Default thresholds on the number of requests remaining in the quota window.
const (
	// QuotaThresholdCritical blocks requests until the window resets.
	QuotaThresholdCritical = 5

	// QuotaThresholdWarning delays each request by Config.ThrottleDelay.
	QuotaThresholdWarning = 20

	// QuotaThresholdHealthy marks the state as healthy.
	QuotaThresholdHealthy = 50
)

// Thresholds groups the quota thresholds used by a Tracker.
type Thresholds struct {
	Critical int
	Warning  int
	Healthy  int
}

// DefaultThresholds returns the package default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Critical: QuotaThresholdCritical,
		Warning:  QuotaThresholdWarning,
		Healthy:  QuotaThresholdHealthy,
	}
}

// QuotaState is the last quota reported by the API.
type QuotaState struct {
	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// ResetAt is when the window resets.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when the state was observed.
	LastUpdate time.Time `json:"last_update"`

	IsHealthy bool `json:"is_healthy"`
}

// IsStale reports whether the state is older than maxAge.
func (s *QuotaState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock reports whether requests must wait for the reset.
// A window that already reset never blocks.
func (s *QuotaState) NeedsCriticalBlock(th Thresholds) bool {
	return s.Remaining < th.Critical && s.TimeUntilReset() > 0
}

// NeedsThrottling reports whether requests should be slowed down.
func (s *QuotaState) NeedsThrottling(th Thresholds) bool {
	return s.Remaining < th.Warning && s.TimeUntilReset() > 0 && !s.NeedsCriticalBlock(th)
}

// TimeUntilReset returns 0 once the reset time has passed.
func (s *QuotaState) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// UpdateHealth recomputes IsHealthy.
func (s *QuotaState) UpdateHealth(th Thresholds) {
	s.IsHealthy = s.Remaining >= th.Healthy
}
