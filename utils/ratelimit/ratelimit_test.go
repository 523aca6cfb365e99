package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// TestFixedWindowLimiter_Allow tests basic counting within one window.
func TestFixedWindowLimiter_Allow(t *testing.T) {
	_, client := setupTestRedis(t)
	limiter := NewFixedWindowLimiter(client, zap.NewNop(), nil, false)
	ctx := context.Background()

	limit := 5
	window := time.Minute

	for i := range limit {
		allowed, err := limiter.Allow(ctx, "member:m1", limit, window)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "member:m1", limit, window)
	require.NoError(t, err)
	assert.False(t, allowed, "request over the limit should be denied")
}

// TestFixedWindowLimiter_SeparateKeys keeps counters independent per key.
func TestFixedWindowLimiter_SeparateKeys(t *testing.T) {
	_, client := setupTestRedis(t)
	limiter := NewFixedWindowLimiter(client, zap.NewNop(), nil, false)
	ctx := context.Background()

	for range 3 {
		allowed, err := limiter.Allow(ctx, "member:m1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "member:m2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "another member's counter is untouched")
}

// TestFixedWindowLimiter_GetRemaining reports the window's leftover quota.
func TestFixedWindowLimiter_GetRemaining(t *testing.T) {
	_, client := setupTestRedis(t)
	limiter := NewFixedWindowLimiter(client, zap.NewNop(), nil, false)
	ctx := context.Background()

	remaining, err := limiter.GetRemaining(ctx, "member:m1", 10, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)

	for range 4 {
		_, err := limiter.Allow(ctx, "member:m1", 10, time.Minute)
		require.NoError(t, err)
	}

	remaining, err = limiter.GetRemaining(ctx, "member:m1", 10, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining)
}

// TestFixedWindowLimiter_LocalFallback hands the decision to the token
// bucket when Redis is down.
func TestFixedWindowLimiter_LocalFallback(t *testing.T) {
	mr, client := setupTestRedis(t)
	bucket := NewTokenBucket(2, 0)
	limiter := NewFixedWindowLimiter(client, zap.NewNop(), bucket, false)
	ctx := context.Background()

	mr.Close()

	for range 2 {
		allowed, err := limiter.Allow(ctx, "member:m1", 100, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "member:m1", 100, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "bucket drained, burst must stop")
}

// TestFixedWindowLimiter_FailOpen admits traffic on a Redis outage when no
// bucket is wired and failOpen is set.
func TestFixedWindowLimiter_FailOpen(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Close()

	open := NewFixedWindowLimiter(client, zap.NewNop(), nil, true)
	allowed, err := open.Allow(ctx, "member:m1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	closed := NewFixedWindowLimiter(client, zap.NewNop(), nil, false)
	allowed, err = closed.Allow(ctx, "member:m1", 1, time.Minute)
	require.Error(t, err)
	assert.False(t, allowed)
}

// TestTokenBucket_TakeN drains and refuses past capacity.
func TestTokenBucket_TakeN(t *testing.T) {
	bucket := NewTokenBucket(3, 0)

	assert.True(t, bucket.TakeN(2))
	assert.True(t, bucket.TakeN(1))
	assert.False(t, bucket.TakeN(1))
}

// TestTokenBucket_Refill restores tokens over time up to capacity.
func TestTokenBucket_Refill(t *testing.T) {
	bucket := NewTokenBucket(5, 1000)
	require.True(t, bucket.TakeN(5))
	require.False(t, bucket.TakeN(1))

	time.Sleep(20 * time.Millisecond)

	assert.True(t, bucket.TakeN(1), "refill should have restored tokens")
}
