package generator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveProducers tracks producer goroutines that have started and not yet returned.
	ActiveProducers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blitzr_generators_active",
		Help: "Number of generator producer goroutines currently running",
	})

	// Results counts terminated generators by outcome.
	Results = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blitzr_generator_results_total",
		Help: "Total number of terminated generators by outcome",
	}, []string{"outcome"}) // "finished", "failed", "closed"
)
