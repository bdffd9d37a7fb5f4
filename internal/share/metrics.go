package share

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "midlo",
		Subsystem: "share",
		Name:      "requests_total",
		Help:      "Share page requests by route and status code.",
	}, []string{"route", "status"})

	metricLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "midlo",
		Subsystem: "share",
		Name:      "request_duration_seconds",
		Help:      "Share page latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	metricCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "midlo",
		Subsystem: "share",
		Name:      "place_cache_hits_total",
		Help:      "Place summaries served from the cache.",
	})

	metricSourceErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "midlo",
		Subsystem: "share",
		Name:      "place_source_errors_total",
		Help:      "Place summary lookups that failed.",
	})
)
