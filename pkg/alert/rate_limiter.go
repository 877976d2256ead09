package alert

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Veraticus/chat-notify/pkg/config"
)

// TokenBucketRateLimiter implements token bucket rate limiting.
type TokenBucketRateLimiter struct {
	capacity   int
	refillRate time.Duration

	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewTokenBucketRateLimiter creates a bucket of capacity tokens that regains
// one token every refillRate.
func NewTokenBucketRateLimiter(capacity int, refillRate time.Duration) *TokenBucketRateLimiter {
	tb := &TokenBucketRateLimiter{
		capacity:   capacity,
		refillRate: refillRate,
	}
	tb.limiter = tb.newLimiter()
	return tb
}

// NewRateLimiter spreads max_messages over the configured window. It returns
// nil, meaning unlimited, when either setting is zero.
func NewRateLimiter(cfg config.RateLimitConfig) *TokenBucketRateLimiter {
	if cfg.MaxMessages == 0 || cfg.Window == 0 {
		return nil
	}
	return NewTokenBucketRateLimiter(cfg.MaxMessages, cfg.Window/time.Duration(cfg.MaxMessages))
}

func (tb *TokenBucketRateLimiter) newLimiter() *rate.Limiter {
	limit := rate.Limit(0)
	if tb.refillRate > 0 {
		limit = rate.Every(tb.refillRate)
	}
	return rate.NewLimiter(limit, tb.capacity)
}

// Allow consumes a token if one is available.
func (tb *TokenBucketRateLimiter) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.limiter.Allow()
}

// Reset refills the bucket.
func (tb *TokenBucketRateLimiter) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.limiter = tb.newLimiter()
}
