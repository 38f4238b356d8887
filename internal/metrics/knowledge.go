package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Knowledge store metrics.
var (
	KnowledgeSearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_search_total",
			Help:      "Knowledge searches by outcome",
		},
		[]string{"outcome"}, // "ok" / "empty" / "degraded"
	)

	KnowledgeSearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_search_cache_total",
			Help:      "Knowledge search cache hits and misses",
		},
		[]string{"result"},
	)

	KnowledgeDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "knowledge_documents",
			Help:      "Indexed knowledge documents per category",
		},
		[]string{"category"},
	)

	KnowledgeRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "knowledge_rebuild_duration_seconds",
			Help:      "Full index rebuild duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	KnowledgeSkippedRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_skipped_records_total",
			Help:      "Malformed knowledge records skipped while loading",
		},
	)
)

var knowledgeOnce sync.Once

// RegisterKnowledgeMetrics registers knowledge store metrics. Safe to call more than once.
func RegisterKnowledgeMetrics() {
	knowledgeOnce.Do(func() {
		prometheus.MustRegister(
			KnowledgeSearchTotal,
			KnowledgeSearchCacheTotal,
			KnowledgeDocuments,
			KnowledgeRebuildDuration,
			KnowledgeSkippedRecordsTotal,
		)
	})
}
