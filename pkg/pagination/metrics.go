package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched counts successfully fetched pages by endpoint.
	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blitzr_pages_fetched_total",
		Help: "Total number of pages fetched by endpoint",
	}, []string{"endpoint"})

	// PageFetchDuration tracks page fetch latency, failed fetches included.
	PageFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blitzr_page_fetch_duration_seconds",
		Help:    "Page fetch duration in seconds by endpoint",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// ItemsEmitted counts items handed to consumers by endpoint.
	ItemsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blitzr_items_emitted_total",
		Help: "Total number of items handed to stream consumers by endpoint",
	}, []string{"endpoint"})
)
