package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recommendation and model-call metrics.
var (
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation sets served by outcome",
		},
		[]string{"outcome"}, // "strict" / "relaxed" / "default"
	)

	ProductVetoesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_vetoes_total",
			Help:      "Products excluded by a hard veto",
		},
		[]string{"mode"},
	)

	ModelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Text generation and vision requests",
		},
		[]string{"operation", "status"},
	)

	ModelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Text generation and vision request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)
)

var recommendOnce sync.Once

// RegisterRecommendMetrics registers recommendation and model-call metrics.
func RegisterRecommendMetrics() {
	recommendOnce.Do(func() {
		prometheus.MustRegister(
			RecommendationsTotal,
			ProductVetoesTotal,
			ModelRequestsTotal,
			ModelRequestDuration,
		)
	})
}

// RegisterAll registers every metric family of the service.
func RegisterAll() {
	RegisterEmbeddingMetrics()
	RegisterKnowledgeMetrics()
	RegisterRecommendMetrics()
}
