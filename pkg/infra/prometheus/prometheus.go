package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds. Embedding a full candidate list can take seconds.
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustsearch_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"route", "method", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustsearch_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)

	CandidatesTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustsearch_candidates_total",
			Help: "Ranked candidates by mode and outcome (scored, skipped or the failing stage)",
		},
		[]string{"mode", "outcome"},
	)

	ProviderFailuresTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustsearch_provider_failures_total",
			Help: "Search provider calls that failed and were treated as empty",
		},
		[]string{"provider"},
	)

	EmbeddingLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustsearch_embedding_latency_ms",
			Help:    "Embedding provider latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"provider", "modality"},
	)

	EmbeddingCacheTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustsearch_embedding_cache_total",
			Help: "Embedding cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

type MetricsConfig struct {
	EnableLatency bool
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency: true,
	}
}

var (
	Config   = DefaultMetricsConfig()
	initOnce sync.Once
)

func Initialize(cfg MetricsConfig) {
	Config = cfg
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
		prometheus.DefaultRegisterer = registry
		prometheus.DefaultGatherer = registry
	})
}

func Gatherer() prometheus.Gatherer {
	return registry
}
