// Package metrics provides the centralized Prometheus metrics reference for
// the API client. All metrics are defined in their respective packages
// (request, transport, cache) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the API client.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Orchestration Metrics (pkg/request):
//   - api_requests_executed_total{result} (Counter): Terminal executor outcomes
//   - api_request_retries_total (Counter): Retry attempts across executors and helpers
//   - api_stale_results_discarded_total (Counter): Superseded or post-dispose results discarded
//   - api_mutations_total{result} (Counter): Mutation outcomes
//   - api_batches_total{result} (Counter): Batch round outcomes
//
// Transport Metrics (pkg/transport):
//   - api_client_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - api_client_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - api_client_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Cache Metrics (pkg/cache):
//   - api_cache_hits_total{layer} (Counter): Cache hits by layer (redis, memo)
//   - api_cache_misses_total{layer} (Counter): Cache misses by layer
//   - api_cache_errors_total{operation} (Counter): Cache operation errors
//   - api_cache_inflight_joins_total (Counter): Reads served by joining an in-flight fetch
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(api_cache_hits_total[5m])) /
//   (sum(rate(api_cache_hits_total[5m])) + sum(rate(api_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(api_client_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(api_client_request_duration_seconds_bucket[5m]))
//
//   # Retry Pressure
//   rate(api_request_retries_total[5m])
