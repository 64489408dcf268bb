package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blitzr_quota_remaining",
		Help: "Requests remaining in the current Blitzr quota window",
	})

	quotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blitzr_quota_blocks_total",
		Help: "Total number of requests blocked by an exhausted quota",
	})

	quotaThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blitzr_quota_throttles_total",
		Help: "Total number of requests delayed below the quota warning threshold",
	})

	limiterWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blitzr_ratelimit_wait_seconds",
		Help:    "Time spent waiting for the local rate limiter",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)
