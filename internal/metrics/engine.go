package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Content engine Prometheus metrics.
var (
	EngineBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsrec",
			Name:      "engine_builds_total",
			Help:      "Total number of content engine builds",
		},
		[]string{"status"},
	)

	EngineBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newsrec",
			Name:      "engine_build_duration_seconds",
			Help:      "Content engine build duration in seconds (corpus load + vectorization)",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	EngineCorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsrec",
			Name:      "engine_corpus_documents",
			Help:      "Number of eligible documents in the current engine snapshot",
		},
	)

	EngineVocabularyTerms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsrec",
			Name:      "engine_vocabulary_terms",
			Help:      "Number of distinct terms in the current engine snapshot",
		},
	)

	RecommendationQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsrec",
			Name:      "recommendation_queries_total",
			Help:      "Total recommendation queries by kind and outcome",
		},
		[]string{"kind", "status"}, // kind: similar/recommend/popular; status: ok/empty/error
	)
)

var registerEngineOnce sync.Once

// RegisterEngineMetrics registers the engine metrics on the default registry. Safe to call twice.
func RegisterEngineMetrics() {
	registerEngineOnce.Do(func() {
		prometheus.MustRegister(
			EngineBuildsTotal,
			EngineBuildDuration,
			EngineCorpusDocuments,
			EngineVocabularyTerms,
			RecommendationQueriesTotal,
		)
	})
}
