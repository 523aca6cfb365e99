package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter is the rate limiting contract used by the API middleware.
type Limiter interface {
	// Allow checks whether one more request under key fits in the window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// AllowN checks whether n more requests under key fit in the window.
	AllowN(ctx context.Context, key string, n int, limit int, window time.Duration) (bool, error)

	// GetRemaining returns how many requests are left in the current window.
	GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// FixedWindowLimiter counts requests per time bucket in Redis, so the limit
// holds across every server instance sharing the Redis. The counter
// increment and expiry run in one pipeline. When Redis is unreachable the
// in-process token bucket takes over as a coarse per-instance ceiling; with
// no bucket wired, failOpen decides.
type FixedWindowLimiter struct {
	redisClient *redis.Client
	logger      *zap.Logger
	local       *TokenBucket
	failOpen    bool
}

// NewFixedWindowLimiter creates a limiter. local may be nil; then a Redis
// outage is resolved by failOpen alone.
func NewFixedWindowLimiter(redisClient *redis.Client, logger *zap.Logger, local *TokenBucket, failOpen bool) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		redisClient: redisClient,
		logger:      logger,
		local:       local,
		failOpen:    failOpen,
	}
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return l.AllowN(ctx, key, 1, limit, window)
}

func (l *FixedWindowLimiter) AllowN(ctx context.Context, key string, n int, limit int, window time.Duration) (bool, error) {
	bucketKey := l.bucketKey(key, time.Now(), window)

	pipe := l.redisClient.Pipeline()
	incrCmd := pipe.IncrBy(ctx, bucketKey, int64(n))
	pipe.Expire(ctx, bucketKey, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("rate limit check failed",
			zap.String("key", bucketKey),
			zap.Error(err),
		)
		if l.local != nil {
			return l.local.TakeN(int64(n)), nil
		}
		if l.failOpen {
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := incrCmd.Val()
	allowed := count <= int64(limit)

	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit),
			zap.Duration("window", window),
		)
	}

	return allowed, nil
}

func (l *FixedWindowLimiter) GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	bucketKey := l.bucketKey(key, time.Now(), window)

	count, err := l.redisClient.Get(ctx, bucketKey).Int64()
	if err != nil {
		if err == redis.Nil {
			return limit, nil
		}
		return 0, fmt.Errorf("failed to get remaining tokens: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// bucketKey derives the time-bucketed Redis key for the window containing
// now.
func (l *FixedWindowLimiter) bucketKey(key string, now time.Time, window time.Duration) string {
	bucket := now.Unix() / int64(window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%d", key, bucket)
}
