package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters and histograms for the memory pipeline. Registration happens at
// package init against the default registry; /metrics serves it.
var (
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mnemo",
		Name:      "turns_total",
		Help:      "Handled turns by route.",
	}, []string{"route"})

	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mnemo",
		Name:      "turn_duration_seconds",
		Help:      "End-to-end turn latency, background jobs excluded.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	CognitionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mnemo",
		Name:      "cognition_decisions_total",
		Help:      "Cognition decisions by action.",
	}, []string{"action"})

	MemoryWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mnemo",
		Name:      "memory_writes_total",
		Help:      "Long-term memory write outcomes.",
	}, []string{"outcome"})

	ExtractionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mnemo",
		Name:      "extraction_failures_total",
		Help:      "Structured extraction failures by kind.",
	}, []string{"kind"})

	BackgroundJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mnemo",
		Name:      "background_jobs_total",
		Help:      "Background job completions by job and outcome.",
	}, []string{"job", "outcome"})
)
