package memory

import (
	"github.com/levkk/kvstore/internal/core/domain"
	"github.com/levkk/kvstore/pkg/cmap"
)

// Store maps keys to values.
//
// Command execution happens on a single goroutine, but the store is backed by
// a sharded map so observers on other goroutines (Len for metrics) stay safe.
type Store struct {
	items *cmap.Map[domain.Value]
}

// Option configures the Store.
type Option func(*storeOptions)

type storeOptions struct {
	shards int
}

// WithShards sets the number of shards of the backing map (power of 2).
func WithShards(n int) Option {
	return func(o *storeOptions) {
		o.shards = n
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	o := storeOptions{shards: cmap.DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		items: cmap.NewWithShards[domain.Value](o.shards),
	}
}

// Get returns the value stored under key, if any.
func (s *Store) Get(key string) (domain.Value, bool) {
	return s.items.Get(key)
}

// Set decodes encoded per the type-prefix rule and stores the result under
// key, replacing any previous entry. On a decode error the store is unchanged.
func (s *Store) Set(key string, encoded []byte) (domain.Value, error) {
	v, err := domain.DecodeValue(encoded)
	if err != nil {
		return domain.Value{}, err
	}
	s.items.Set(key, v)
	return v, nil
}

// Put stores an already decoded value.
func (s *Store) Put(key string, v domain.Value) {
	s.items.Set(key, v)
}

// Delete removes key and reports whether it existed.
func (s *Store) Delete(key string) bool {
	_, ok := s.items.Pop(key)
	return ok
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return s.items.Count()
}
