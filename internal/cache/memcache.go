package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value   []byte
	expires time.Time
}

// MemCache is an in-process Cache used by tests that want real TTL and
// single-flight behavior without a Redis dependency.
type MemCache struct {
	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group
}

// NewMemCache returns an empty MemCache.
func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string]entry)}
}

func (c *MemCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *MemCache) SetEX(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expires: time.Now().Add(ttl)}
	return nil
}

func (c *MemCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *MemCache) DelPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *MemCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, producer Producer) ([]byte, error) {
	if val, ok, err := c.Get(ctx, key); err != nil {
		return nil, err
	} else if ok {
		return val, nil
	}

	val, err, _ := c.group.Do(key, func() (any, error) {
		computed, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.SetEX(ctx, key, computed, ttl)
		return computed, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]byte), nil
}
