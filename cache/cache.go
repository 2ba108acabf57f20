// Package cache is a small read-through JSON cache for the public catalog,
// backed by Redis. All methods are nil-safe so callers never need to branch
// on whether caching is configured.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/servease/marketplace/logger"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at addr. Returns nil when addr is empty; a nil Cache
// is valid and simply misses on every lookup.
func New(addr string, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log := logger.Get()
		log.Warn().Err(err).Str("addr", addr).Msg("redis unavailable, catalog cache disabled")
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// GetJSON loads key into v, reporting whether it was a hit.
func (c *Cache) GetJSON(ctx context.Context, key string, v any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// SetJSON stores v under key for the configured TTL. Failures are logged and
// otherwise ignored; the cache is never load-bearing.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log := logger.Get()
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
