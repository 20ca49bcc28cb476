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
	// Latency buckets in milliseconds; the upper tail covers the bounded
	// model-call timeout.
	latencyBuckets = []float64{
		25, 50, 100,
		250, 500, 1000,
		2500, 5000, 10000,
		30000, 60000,
	}

	// AnalyzeRequestsTotal counts analyze requests by terminal outcome:
	// ok, client_limited, daily_limited, validation_error, config_error,
	// upstream_error.
	AnalyzeRequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "itemgate_analyze_requests_total",
			Help: "Total number of analyze requests processed",
		},
		[]string{"outcome"},
	)

	// RateLimitRejections counts admissions refused by scope: client or daily.
	RateLimitRejections = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "itemgate_rate_limit_rejections_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"scope"},
	)

	ModelFailuresTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "itemgate_model_failures_total",
			Help: "Upstream model calls that failed or timed out",
		},
	)

	FallbackDegradationsTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "itemgate_fallback_degradations_total",
			Help: "Model replies replaced by a deterministic fallback record",
		},
	)

	AnalyzeLatency = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "itemgate_analyze_latency_ms",
			Help:    "Analyze request latency in milliseconds",
			Buckets: latencyBuckets,
		},
	)
)

var initOnce sync.Once

func Initialize() {
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		prometheus.DefaultRegisterer = registry
		prometheus.DefaultGatherer = registry
	})
}
