// Package httpserver provides the side HTTP listener for kvstore.
//
// It serves operational endpoints only; key-value traffic uses the line
// protocol of package kvserver.
//
//   - GET /health: liveness
//   - GET /ready: readiness of the kv listener (503 until it accepts)
//   - GET /metrics: Prometheus exposition
//   - GET /version: build information
package httpserver
