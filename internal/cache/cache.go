// Package cache is a Redis read-through cache for hot public content.
// Authorization decisions are never cached here; only rendered content
// listings go through it.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache wraps a Redis client with singleflight load coalescing
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

// New creates a cache against the given Redis address
func New(addr string) *Cache {
	return &Cache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// GetOrLoad returns the cached bytes for key, loading and storing them
// on a miss. Concurrent misses for the same key share one load.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, err := load(ctx)
		if err != nil {
			return nil, err
		}
		// Best effort: a failed Set just means the next request reloads
		_ = c.rdb.Set(ctx, key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate drops the given keys after an admin mutation
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	_ = c.rdb.Del(ctx, keys...).Err()
}

// Close releases the underlying Redis connection
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// GetOrLoadJSON is a typed wrapper over GetOrLoad for JSON values
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
