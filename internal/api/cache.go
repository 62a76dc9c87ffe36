package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/commerce-pulse/internal/config"
	"github.com/ignite/commerce-pulse/internal/pkg/logger"
)

// cachePrefix namespaces rollup cache entries in Redis.
const cachePrefix = "pulse:rollup:"

// Cache is a Redis-backed response cache for rollup endpoints. Rollups
// re-aggregate the fact tables on every request; between ETL runs the
// answer cannot change, so short TTLs are safe.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects a rollup cache from configuration. Returns nil when
// the cache is disabled; handlers treat a nil cache as a pass-through.
func NewCache(cfg config.CacheConfig) *Cache {
	if !cfg.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{client: client, ttl: cfg.TTL()}
}

// NewCacheWithClient wraps an existing Redis client (useful for testing).
func NewCacheWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached payload for key, or ok=false on miss. Redis
// errors degrade to a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("rollup cache read failed", "error", err.Error())
		}
		return nil, false
	}
	return data, true
}

// Set stores a payload under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	if err := c.client.Set(ctx, cachePrefix+key, payload, c.ttl).Err(); err != nil {
		logger.Warn("rollup cache write failed", "error", err.Error())
	}
}

// Flush drops every cached rollup. Called after an ETL run lands new
// rows so readers never see stale aggregates past the next request.
func (c *Cache) Flush(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, cachePrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn("rollup cache scan failed", "error", err.Error())
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			logger.Warn("rollup cache flush failed", "error", err.Error())
		}
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
