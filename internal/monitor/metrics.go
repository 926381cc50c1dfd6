package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal tracks per-source monitoring cycles by result
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipwatch_cycles_total",
			Help: "Total number of per-source monitoring cycles",
		},
		[]string{"source", "result"},
	)

	// ItemsRetrievedTotal tracks successfully stored items per source
	ItemsRetrievedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipwatch_items_retrieved_total",
			Help: "Total number of items retrieved and stored",
		},
		[]string{"source"},
	)

	// ItemFailuresTotal tracks per-item retrieval failures by error kind
	ItemFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipwatch_item_failures_total",
			Help: "Total number of item retrievals that failed after retries",
		},
		[]string{"source", "kind"},
	)

	// SourceWatermark tracks the dedup watermark per source
	SourceWatermark = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clipwatch_source_watermark",
			Help: "Unix timestamp of the newest stored item per source",
		},
		[]string{"source"},
	)

	// BreakerConsecutiveFailures tracks the circuit breaker's failure run
	BreakerConsecutiveFailures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipwatch_breaker_consecutive_failures",
			Help: "Consecutive iterations in which every source failed",
		},
	)
)
