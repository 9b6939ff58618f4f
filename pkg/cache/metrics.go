package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for cache operations.
var (
	// CacheHits counts cache hits by layer (redis, memo).
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_cache_hits_total",
		Help: "Total cache hits by layer",
	}, []string{"layer"})

	// CacheMisses counts cache misses by layer.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_cache_misses_total",
		Help: "Total cache misses by layer",
	}, []string{"layer"})

	// CacheErrors counts failed cache operations.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_cache_errors_total",
		Help: "Total cache operation errors",
	}, []string{"operation"})

	// InFlightJoins counts reads that joined a fetch already in flight.
	InFlightJoins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "api_cache_inflight_joins_total",
		Help: "Reads served by joining an in-flight fetch",
	})
)
