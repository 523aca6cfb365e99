package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is an in-process token bucket. It backs up the Redis limiter
// when Redis is unreachable, so a cache outage still leaves some ceiling on
// request bursts.
type TokenBucket struct {
	mu       sync.Mutex
	capacity int64
	tokens   int64
	rate     int64 // tokens added per second
	lastFill time.Time
}

// NewTokenBucket creates a bucket that starts full and refills at rate
// tokens per second up to capacity.
func NewTokenBucket(capacity, rate int64) *TokenBucket {
	return &TokenBucket{
		capacity: capacity,
		tokens:   capacity,
		rate:     rate,
		lastFill: time.Now(),
	}
}

// TakeN consumes n tokens if available.
func (b *TokenBucket) TakeN(n int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(time.Now())
	if b.tokens < n {
		return false
	}
	b.tokens -= n
	return true
}

func (b *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastFill)
	if elapsed <= 0 {
		return
	}
	added := int64(elapsed.Seconds() * float64(b.rate))
	if added <= 0 {
		return
	}
	b.tokens += added
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastFill = now
}
