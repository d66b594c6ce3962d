package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы выполнения узла для метрик.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeSkipped  = "skipped"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentor_requests_total",
			Help: "Total number of processed requests by routing policy",
		},
		[]string{"policy"},
	)

	requestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mentor_request_duration_seconds",
			Help:    "End-to-end request processing time",
			Buckets: prometheus.DefBuckets,
		},
	)

	nodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentor_node_duration_seconds",
			Help:    "Handler execution time by node and outcome",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"node", "outcome"},
	)

	nodeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentor_node_fallbacks_total",
			Help: "Number of fallback results substituted by node and error kind",
		},
		[]string{"node", "kind"},
	)

	analysisFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentor_analysis_fallbacks_total",
			Help: "Number of requests classified by the heuristic analyzer",
		},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentor_analysis_cache_lookups_total",
			Help: "Analysis cache lookups by result",
		},
		[]string{"result"},
	)
)

// ObserveRequest фиксирует обработанный запрос.
func ObserveRequest(policy string, d time.Duration) {
	requestsTotal.WithLabelValues(policy).Inc()
	requestDuration.Observe(d.Seconds())
}

// ObserveNode фиксирует время выполнения узла.
func ObserveNode(node, outcome string, d time.Duration) {
	nodeDuration.WithLabelValues(node, outcome).Observe(d.Seconds())
}

// IncNodeFallback увеличивает счётчик подстановок fallback'а.
func IncNodeFallback(node, kind string) {
	nodeFallbacks.WithLabelValues(node, kind).Inc()
}

// IncAnalysisFallback увеличивает счётчик эвристической классификации.
func IncAnalysisFallback() {
	analysisFallbacks.Inc()
}

// ObserveCacheLookup фиксирует попадание или промах кэша анализа.
func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}
