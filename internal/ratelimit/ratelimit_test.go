package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/shopcook-api/internal/ratelimit"
	"github.com/dom/shopcook-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_Allow(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	ctx := context.Background()
	rule := ratelimit.Rule{Requests: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "login:10.0.0.1", rule)
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i+1)
	}

	ok, err := limiter.Allow(ctx, "login:10.0.0.1", rule)
	require.NoError(t, err)
	assert.False(t, ok, "fourth request should be limited")

	ok, err = limiter.Allow(ctx, "login:10.0.0.2", rule)
	require.NoError(t, err)
	assert.True(t, ok, "other clients keep their own bucket")
}

func TestMemoryLimiter_Evict(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	ctx := context.Background()

	_, _ = limiter.Allow(ctx, "a", ratelimit.LoginRule)
	_, _ = limiter.Allow(ctx, "b", ratelimit.LoginRule)

	assert.Equal(t, 0, limiter.Evict(time.Now().Add(-time.Hour)))
	assert.Equal(t, 2, limiter.Evict(time.Now().Add(time.Second)))
}

func TestRedisLimiter_Allow(t *testing.T) {
	client := testutil.NewTestRedis(t)
	limiter := ratelimit.NewRedisLimiter(client)
	ctx := context.Background()
	rule := ratelimit.Rule{Requests: 2, Window: time.Minute}

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"first request", "register:1.1.1.1", true},
		{"second request", "register:1.1.1.1", true},
		{"over the limit", "register:1.1.1.1", false},
		{"different client", "register:2.2.2.2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := limiter.Allow(ctx, tt.key, rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	ttl, err := client.TTL(ctx, "ratelimit:register:1.1.1.1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisLimiter_RestoresMissingExpiry(t *testing.T) {
	client := testutil.NewTestRedis(t)
	limiter := ratelimit.NewRedisLimiter(client)
	ctx := context.Background()
	rule := ratelimit.Rule{Requests: 2, Window: time.Minute}

	// A counter left behind without a TTL would otherwise throttle forever.
	require.NoError(t, client.Set(ctx, "ratelimit:login:3.3.3.3", 5, 0).Err())

	ok, err := limiter.Allow(ctx, "login:3.3.3.3", rule)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, "ratelimit:login:3.3.3.3").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	ok, err = limiter.Allow(ctx, "login:3.3.3.3", rule)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := client.TTL(ctx, "ratelimit:login:3.3.3.3").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, again, ttl, "a running window is not extended")
}
