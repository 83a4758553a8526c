package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and analysis pipeline Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draftd",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "draftd",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draftd",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	RetrievalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draftd",
			Name:      "retrievals_total",
			Help:      "Total retrieval queries by strategy and status",
		},
		[]string{"strategy", "status"},
	)

	RetrievalFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "draftd",
			Name:      "retrieval_fallbacks_total",
			Help:      "Retrievals that switched from the dense to the sparse strategy",
		},
	)

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draftd",
			Name:      "analyses_total",
			Help:      "Total draft analyses by engine that produced the result",
		},
		[]string{"engine"},
	)

	AnalysisFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draftd",
			Name:      "analysis_fallbacks_total",
			Help:      "Generative analyses that degraded to the heuristic fallback",
		},
		[]string{"reason"}, // "backend_unavailable" / "malformed_output"
	)

	AnalysisRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "draftd",
			Name:      "analysis_strict_retries_total",
			Help:      "Strict-prompt retries after a malformed generative response",
		},
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "draftd",
			Name:      "analysis_duration_seconds",
			Help:      "Structured analysis duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"engine"},
	)
)

// RegisterPipelineMetrics registers retrieval and analysis metrics with the
// default registry. Call once from main.
func RegisterPipelineMetrics() {
	prometheus.MustRegister(
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		RetrievalsTotal,
		RetrievalFallbacksTotal,
		AnalysesTotal,
		AnalysisFallbacksTotal,
		AnalysisRetriesTotal,
		AnalysisDuration,
	)
}
