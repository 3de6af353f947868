// Package main provides the entry point for kvstore-server.
//
// The server provides:
//
//   - the line-oriented key-value protocol on server.kv.addr
//   - /health, /ready, /metrics and /version on server.http.addr
//
// Usage:
//
//	kvstore-server [flags]
//	kvstore-server --config /path/to/config.yaml
//
// When a config file is given it is watched and log.level changes are
// applied without a restart.
package main
