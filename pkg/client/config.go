package client

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultBaseURL is the public Blitzr API.
const DefaultBaseURL = "https://api.blitzr.com/"

// DefaultUserAgent identifies this library when no User-Agent is configured.
const DefaultUserAgent = "blitzr-client-go/1.0"

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root; endpoints are appended to it.
	BaseURL string `validate:"required,url"`

	// APIKey is sent as the "key" query parameter on every request.
	APIKey string `validate:"required"`

	UserAgent string `validate:"required"`

	// Redis enables the response cache and shares quota state between
	// processes. Optional.
	Redis *redis.Client `validate:"-"`

	// RateLimit is the local request rate per second; 0 disables it.
	RateLimit float64 `validate:"gte=0"`
	Burst     int     `validate:"gte=0"`

	// QuotaThreshold is the remaining quota below which requests are blocked.
	// Requests are throttled below four times this value.
	QuotaThreshold int `validate:"gte=0"`

	Timeout time.Duration `validate:"gt=0"`

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries     int           `validate:"gte=0,lte=10"`
	InitialBackoff time.Duration `validate:"gte=0"`
}

// DefaultConfig returns a configuration for the public API.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		APIKey:         apiKey,
		UserAgent:      DefaultUserAgent,
		RateLimit:      10,
		Burst:          10,
		QuotaThreshold: 5,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
	}
}
