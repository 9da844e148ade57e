package cache

import (
	"fmt"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Config holds configuration for the response cache.
type Config struct {
	// Count is the maximum number of cached responses.
	Count int `mapstructure:"count" default:"50000" env:"CACHE_COUNT" validate:"gt=0"`
}

// Store is a bounded LRU map from cache keys to values of type V.
type Store[V any] struct {
	lru      *lru.Cache[string, V]
	capacity int
}

// New creates a store holding at most capacity entries.
func New[V any](capacity int) (*Store[V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	c, err := lru.New[string, V](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &Store[V]{lru: c, capacity: capacity}, nil
}

// Get returns the value stored under key and marks it most recently used.
func (s *Store[V]) Get(key string) (V, bool) {
	return s.lru.Get(key)
}

// Set stores value under key, evicting the least recently used entry when full.
// It reports whether an eviction happened.
func (s *Store[V]) Set(key string, value V) bool {
	return s.lru.Add(key, value)
}

// Len returns the number of entries currently stored.
func (s *Store[V]) Len() int {
	return s.lru.Len()
}

// Capacity returns the configured maximum number of entries.
func (s *Store[V]) Capacity() int {
	return s.capacity
}

// Key serializes query parameters into a stable cache key.
// Keys are sorted, so parameter order never changes the result.
func Key(query url.Values) string {
	return query.Encode()
}
