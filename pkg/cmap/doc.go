// Package cmap provides a string-keyed sharded map.
//
// Keys are routed to one of a power-of-two number of shards by their
// murmur3 hash; each shard has its own RWMutex. Readers on other goroutines
// (metric scrapes, for example) never contend with writers on unrelated
// shards.
//
// Usage:
//
//	m := cmap.New[domain.Value]()
//	m.Set("key", v)
//	val, ok := m.Get("key")
package cmap
