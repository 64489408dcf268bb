// Package metrics exposes the Prometheus metrics of the Blitzr client.
// The metrics themselves are defined in the packages that record them
// (generator, pagination, client, cache, ratelimit) and registered with the
// default registry through promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all client metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the metrics served by Handler.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Generator Metrics (pkg/generator):
//   - blitzr_generators_active (Gauge): Producer goroutines currently running
//   - blitzr_generator_results_total{outcome} (Counter): Terminated generators by outcome (finished, failed, closed)
//
// Pagination Metrics (pkg/pagination):
//   - blitzr_pages_fetched_total{endpoint} (Counter): Pages fetched successfully
//   - blitzr_page_fetch_duration_seconds{endpoint} (Histogram): Page fetch duration
//   - blitzr_items_emitted_total{endpoint} (Counter): Items handed to consumers
//
// Quota Metrics (pkg/ratelimit):
//   - blitzr_quota_remaining (Gauge): Remaining API quota from the last response
//   - blitzr_quota_blocks_total (Counter): Requests blocked below the critical threshold
//   - blitzr_quota_throttles_total (Counter): Requests delayed below the warning threshold
//   - blitzr_ratelimit_wait_seconds (Histogram): Time spent waiting for the local rate limiter
//
// Cache Metrics (pkg/cache):
//   - blitzr_cache_hits_total (Counter): Fresh entries served from Redis
//   - blitzr_cache_misses_total (Counter): Absent or stale entries
//   - blitzr_cache_size_bytes (Gauge): Bytes written to the cache
//   - blitzr_cache_conditional_requests_total (Counter): Revalidations sent with If-None-Match or If-Modified-Since
//   - blitzr_cache_304_responses_total (Counter): 304 Not Modified responses
//   - blitzr_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - blitzr_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - blitzr_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - blitzr_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//   - blitzr_retries_total{error_class} (Counter): Retry attempts by error class
//   - blitzr_retry_backoff_seconds{error_class} (Histogram): Backoff before retries
//   - blitzr_retry_exhausted_total{error_class} (Counter): Requests that exhausted their retries
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(blitzr_cache_hits_total[5m])) /
//   (sum(rate(blitzr_cache_hits_total[5m])) + sum(rate(blitzr_cache_misses_total[5m])))
//
//   # Streams abandoned before the end
//   rate(blitzr_generator_results_total{outcome="closed"}[5m])
//
//   # Leaked producers (should return to 0 when idle)
//   blitzr_generators_active
//
//   # P95 page latency per endpoint
//   histogram_quantile(0.95, sum by (le, endpoint) (rate(blitzr_page_fetch_duration_seconds_bucket[5m])))
