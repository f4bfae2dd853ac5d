package cache

import (
	"context"
	"time"
)

// NoopCache is wired in when CACHE_URL is unset: every Get misses, every
// Set/Del is a no-op, and GetOrCompute always calls through to producer.
// AggregationService's code path is identical either way.
type NoopCache struct{}

// NewNoopCache returns a Cache that never actually caches anything.
func NewNoopCache() *NoopCache { return &NoopCache{} }

func (NoopCache) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (NoopCache) SetEX(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (NoopCache) Del(ctx context.Context, keys ...string) error { return nil }

func (NoopCache) DelPrefix(ctx context.Context, prefix string) error { return nil }

func (NoopCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, producer Producer) ([]byte, error) {
	return producer(ctx)
}
