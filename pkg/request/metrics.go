package request

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for request orchestration.
var (
	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_executed_total",
		Help: "Terminal executor outcomes by result",
	}, []string{"result"})

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "api_request_retries_total",
		Help: "Total retry attempts across all executors and call helpers",
	})

	staleResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "api_stale_results_discarded_total",
		Help: "Results discarded because the call was superseded or its owner disposed",
	})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_mutations_total",
		Help: "Mutation outcomes by result",
	}, []string{"result"})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_batches_total",
		Help: "Batch round outcomes by result",
	}, []string{"result"})
)
