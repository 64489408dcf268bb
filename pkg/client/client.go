// Package client is the HTTP transport for the Blitzr API: rate limiting,
// quota tracking, response caching, retries and error classification.
package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/blitzr-client/internal/validation"
	"github.com/Sternrassler/blitzr-client/pkg/cache"
	"github.com/Sternrassler/blitzr-client/pkg/logging"
	"github.com/Sternrassler/blitzr-client/pkg/ratelimit"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client executes Blitzr API requests.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	limiter    *ratelimit.Limiter
	quota      *ratelimit.Tracker
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// New validates cfg and creates a client.
func New(cfg Config) (*Client, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	logger := logging.NewLogger("blitzr-http")

	// Quota thresholds scale with the configured critical level
	quotaCfg := ratelimit.DefaultConfig()
	if cfg.QuotaThreshold > 0 {
		quotaCfg.Thresholds = ratelimit.Thresholds{
			Critical: cfg.QuotaThreshold,
			Warning:  cfg.QuotaThreshold * 4,
			Healthy:  cfg.QuotaThreshold * 10,
		}
	}
	quotaCfg.Namespace = keyNamespace(cfg.APIKey)

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: base,
		limiter: ratelimit.NewLimiter(cfg.RateLimit, cfg.Burst),
		quota:   ratelimit.NewTracker(cfg.Redis, quotaCfg, logging.NewLogger("ratelimit")),
		config:  cfg,
		logger:  logger,
	}
	// Response caching needs Redis
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// keyNamespace derives a stable, non-reversible quota namespace from the API key.
func keyNamespace(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:8])
}

// Do executes req through the rate limiter, quota gate, cache and retry loop.
//
// Network failures and 5xx/429 answers are retried. Other 4xx answers are
// returned as responses for the caller to interpret.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := c.endpointOf(req.URL)

	// Start request timing
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Client-side rate limit
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	// Step 2: Check API quota
	allowed, err := c.quota.ShouldAllowRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("quota check: %w", err)
	}
	if !allowed {
		requestsTotal.WithLabelValues(endpoint, "quota_blocked").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
		return nil, &APIError{
			StatusCode: http.StatusTooManyRequests,
			ErrorClass: ErrorClassRateLimit,
			Message:    "request blocked until quota reset",
			Err:        ratelimit.ErrQuotaExhausted,
		}
	}

	// Step 3: Check cache
	cacheKey := cache.Key{Endpoint: endpoint, Query: req.URL.Query()}
	var cached *cache.Entry
	if c.cache != nil {
		cached, err = c.cache.Lookup(ctx, cacheKey)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
	}
	if cached != nil && !cached.IsExpired() {
		c.logger.Debug().Str("endpoint", endpoint).Bool("cache_hit", true).Msg("Serving cached response")
		requestsTotal.WithLabelValues(endpoint, "cache_hit").Inc()
		return cache.EntryToResponse(cached, req), nil
	}
	// Step 4: Conditional request for a stale entry
	if cached != nil && cache.ShouldMakeConditionalRequest(cached) {
		cache.AddConditionalHeaders(req, cached)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("etag", cached.ETag).
			Msg("Revalidating stale cache entry")
	}

	// Step 5: Headers
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.New().String())
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Msg("Executing request")

	// Step 6: Execute with retry
	var resp *http.Response
	retryErr := retryWithBackoff(ctx, c.retryConfig(), c.logger, func() error {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)

		// Handle network errors
		if reqErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        reqErr,
			}
		}

		// Update quota from headers
		if err := c.quota.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update quota from headers")
		}

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		// Handle HTTP errors
		if resp.StatusCode >= 400 {
			class := classifyStatus(resp.StatusCode)
			errorsTotal.WithLabelValues(string(class)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status_code", resp.StatusCode).
				Str("error_class", string(class)).
				Msg("Request error")

			if shouldRetry(class) {
				apiErr := &APIError{
					StatusCode: resp.StatusCode,
					ErrorClass: class,
					Message:    readErrorMessage(resp),
				}
				resp.Body.Close()
				return apiErr
			}
			// Other client errors are returned as responses
		}
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	// Step 7: Handle 304 Not Modified
	if resp.StatusCode == http.StatusNotModified && cached != nil {
		resp.Body.Close()
		cache.NotModifiedResponses.Inc()
		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified, using cache")

		// Refresh expiry from the new headers
		if err := c.cache.UpdateTTL(ctx, cacheKey, cache.ExpiresFromHeaders(resp.Header)); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache entry")
		}
		return cache.EntryToResponse(cached, req), nil
	}

	// Step 8: Update cache on success
	if resp.StatusCode == http.StatusOK && c.cache != nil {
		entry, err := cache.ResponseToEntry(resp)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if entry.TTL() > 0 {
			if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cache response")
			} else {
				c.logger.Debug().Str("endpoint", endpoint).Dur("ttl", entry.TTL()).Msg("Cached response")
			}
		}
	}

	return resp, nil
}

// GetJSON requests endpoint with params and decodes the JSON answer into out.
//
// An answer with status 400 or above yields an *APIError matching
// ErrProtocol, as does a body that cannot be decoded. An unreachable API
// yields an *APIError matching ErrTransport.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := c.newRequest(ctx, endpoint, params)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Non-retried 4xx answers
	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    readErrorMessage(resp),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode " + endpoint + " response",
			Err:        err,
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	u := c.baseURL.JoinPath(endpoint)
	// JoinPath drops the trailing slash the API expects.
	if strings.HasSuffix(endpoint, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	// Copy params, then add the API key
	query := url.Values{}
	for name, values := range params {
		query[name] = append([]string(nil), values...)
	}
	query.Set("key", c.config.APIKey)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

// endpointOf returns the path of u relative to the base URL.
func (c *Client) endpointOf(u *url.URL) string {
	return strings.TrimPrefix(u.Path, c.baseURL.Path)
}

func (c *Client) retryConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = c.config.MaxRetries + 1
	if c.config.InitialBackoff > 0 {
		cfg.InitialBackoff = c.config.InitialBackoff
	}
	return cfg
}

// readErrorMessage extracts "message" or "error" from a JSON error body and
// falls back to the status text.
func readErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(body) > 0 {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.Message != "" {
				return payload.Message
			}
			if payload.Error != "" {
				return payload.Error
			}
		}
	}
	return resp.Status
}

// Ping checks the Redis connection when one is configured.
func (c *Client) Ping(ctx context.Context) error {
	if c.config.Redis == nil {
		return nil
	}
	return c.config.Redis.Ping(ctx).Err()
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient replaces the HTTP client, e.g. to point tests at a stub transport.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Cache returns the response cache, or nil without Redis.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}

// Quota returns the quota tracker.
func (c *Client) Quota() *ratelimit.Tracker {
	return c.quota
}
