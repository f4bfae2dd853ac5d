package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RedisCache is the go-redis backed Cache. DelPrefix uses SCAN+pipelined
// DEL rather than KEYS, which blocks the server on a large keyspace.
type RedisCache struct {
	client *redis.Client
	group  singleflight.Group
}

// NewRedisCache wraps an existing go-redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) SetEX(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) DelPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			pipe := c.client.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *RedisCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, producer Producer) ([]byte, error) {
	// A Get error is treated as a miss so an unreachable cache falls through
	// to the producer instead of failing the read.
	if val, ok, err := c.Get(ctx, key); err == nil && ok {
		return val, nil
	}

	val, err, _ := c.group.Do(key, func() (any, error) {
		computed, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.SetEX(ctx, key, computed, ttl); err != nil {
			return computed, nil
		}
		return computed, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]byte), nil
}
