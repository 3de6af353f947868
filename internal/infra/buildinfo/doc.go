// Package buildinfo provides build information for kvstore.
//
// Version, commit and build time are injected via ldflags:
//
//	go build -ldflags "-X github.com/levkk/kvstore/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
