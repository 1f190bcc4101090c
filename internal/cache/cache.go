// Package cache stores JSON snapshots of computed analytics payloads in
// Redis so repeated dashboard loads within the TTL skip recomputing whole
// windows. Redis failures degrade to cache misses; a down cache never breaks
// a request.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luxmetrics/insights/internal/pkg/logger"
)

const keyPrefix = "insights"

// Cache is a best-effort JSON snapshot cache. A nil client disables caching;
// every lookup is then a miss.
type Cache struct {
	client *redis.Client
}

// New wraps a Redis client. Pass nil to run without caching.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Key joins parts into a namespaced cache key, e.g. "insights:dashboard:30".
func Key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

// Get unmarshals the cached value for key into dest and reports whether it
// was a hit. Errors are logged and reported as misses.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value under key for ttl. Failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.client == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Invalidate deletes the given keys, ignoring failures.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("cache invalidate failed", "error", err)
	}
}
