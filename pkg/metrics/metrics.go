// Package metrics provides the Prometheus registry reference for the report
// export tool. All metrics are defined in their respective packages (client,
// report) to maintain modularity and avoid circular dependencies.
//
// The process itself is one-shot and exposes no metrics endpoint; the
// collectors exist so the client and fetcher embed cleanly in long-running
// hosts that scrape the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the report export
// packages. All metrics are automatically registered via promauto.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - costlocker_graphql_requests_total{operation, status} (Counter): Requests by operation and outcome
//   - costlocker_graphql_request_duration_seconds{operation} (Histogram): Request duration by operation
//   - costlocker_graphql_errors_total{class} (Counter): Errors by class (transport, protocol)
//
// Aggregation Metrics (pkg/report):
//   - costlocker_report_pages_fetched_total (Counter): Report pages fetched successfully
//   - costlocker_report_items_fetched_total (Counter): Items fetched across all pages
//   - costlocker_report_aggregation_duration_seconds (Histogram): Full aggregation duration
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(costlocker_graphql_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(costlocker_graphql_request_duration_seconds_bucket[5m]))
//
//   # Items per Aggregation
//   rate(costlocker_report_items_fetched_total[5m]) / rate(costlocker_report_aggregation_duration_seconds_count[5m])
