// Package cache implements the TTL'd keyed cache AggregationService reads
// through, with pattern invalidation and single-flight collapse of
// concurrent misses on the same key.
package cache

import (
	"context"
	"time"
)

// Producer computes the value to cache on a miss.
type Producer func(ctx context.Context) ([]byte, error)

// Cache is the contract every read path goes through. Every operation must
// have a store-backed fallback: a cache outage must never break a read, only
// make it slower.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetEX(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DelPrefix(ctx context.Context, prefix string) error
	// GetOrCompute returns the cached value for key, or runs producer on a
	// miss, caching and returning its result. Concurrent callers racing on
	// the same key within one instance collapse into a single producer
	// invocation.
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, producer Producer) ([]byte, error)
}
