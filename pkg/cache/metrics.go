package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blitzr_cache_hits_total",
		Help: "Total number of response cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blitzr_cache_misses_total",
		Help: "Total number of response cache misses",
	})

	// CacheSize is the number of bytes written to Redis by this process.
	CacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blitzr_cache_size_bytes",
		Help: "Bytes of cached responses written by this process",
	})

	ConditionalRequestsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blitzr_cache_conditional_requests_total",
		Help: "Total number of requests sent with If-None-Match or If-Modified-Since",
	})

	NotModifiedResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blitzr_cache_304_responses_total",
		Help: "Total number of 304 Not Modified responses served from cache",
	})

	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blitzr_cache_errors_total",
		Help: "Total number of cache operation errors",
	}, []string{"operation"}) // "get", "set", "delete"
)
