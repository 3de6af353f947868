// Package metric provides Prometheus metrics for kvstore.
//
//   - prometheus.go: the Registry, its collectors and the /metrics handler
//
// Registry implements kvserver.Metrics through method set compatibility,
// without importing that package. Metrics are exposed at /metrics in
// Prometheus format.
package metric
