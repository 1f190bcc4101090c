package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxmetrics/insights/internal/cache"
)

type payload struct {
	Total float64 `json:"total"`
	Days  int     `json:"days"`
}

func testCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.New(client), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()
	key := cache.Key("dashboard", "30")

	c.Set(ctx, key, payload{Total: 300, Days: 30}, time.Minute)

	var got payload
	require.True(t, c.Get(ctx, key, &got))
	assert.InDelta(t, 300.0, got.Total, 1e-9)
	assert.Equal(t, 30, got.Days)
}

func TestCacheMiss(t *testing.T) {
	c, _ := testCache(t)

	var got payload
	assert.False(t, c.Get(context.Background(), cache.Key("dashboard", "7"), &got))
}

func TestCacheExpiry(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()
	key := cache.Key("dashboard", "30")

	c.Set(ctx, key, payload{Total: 1}, time.Second)
	mr.FastForward(2 * time.Second)

	var got payload
	assert.False(t, c.Get(ctx, key, &got))
}

func TestCacheInvalidate(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()
	key := cache.Key("dashboard", "30")

	c.Set(ctx, key, payload{Total: 1}, time.Minute)
	c.Invalidate(ctx, key)

	var got payload
	assert.False(t, c.Get(ctx, key, &got))
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	c, mr := testCache(t)
	key := cache.Key("dashboard", "30")
	require.NoError(t, mr.Set(key, "{not json"))

	var got payload
	assert.False(t, c.Get(context.Background(), key, &got))
}

func TestCacheDisabled(t *testing.T) {
	c := cache.New(nil)
	ctx := context.Background()

	c.Set(ctx, "k", payload{Total: 1}, time.Minute)
	var got payload
	assert.False(t, c.Get(ctx, "k", &got))
}

func TestCacheDownRedisDegrades(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()
	key := cache.Key("dashboard", "30")
	c.Set(ctx, key, payload{Total: 1}, time.Minute)

	mr.Close()

	var got payload
	assert.False(t, c.Get(ctx, key, &got))
	// Writes after the outage are swallowed too.
	c.Set(ctx, key, payload{Total: 2}, time.Minute)
}
