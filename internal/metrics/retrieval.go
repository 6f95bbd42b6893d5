package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopassist",
			Name:      "retrieval_requests_total",
			Help:      "Total number of retrieval requests",
		},
		[]string{"status"},
	)

	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "shopassist",
			Name:      "retrieval_duration_seconds",
			Help:      "End-to-end retrieval duration (embed, rank, filter) in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	RetrievalResultsRetained = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "shopassist",
			Name:      "retrieval_results_retained",
			Help:      "Number of results surviving the post-filter per request",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopassist",
			Name:      "generation_requests_total",
			Help:      "Total number of response generation requests",
		},
		[]string{"status"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval metrics. Must be called once
// from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalRequestsTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RetrievalResultsRetained)
	prometheus.MustRegister(GenerationRequestsTotal)
	retrievalMetricsRegistered = true
}
