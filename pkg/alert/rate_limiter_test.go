package alert

import (
	"testing"
	"time"

	"github.com/Veraticus/chat-notify/pkg/config"
)

func TestTokenBucketRateLimiter_Allow(t *testing.T) {
	type op struct {
		delay     time.Duration
		wantAllow bool
	}
	tests := []struct {
		name       string
		capacity   int
		refillRate time.Duration
		ops        []op
	}{
		{
			name:       "allow up to capacity immediately",
			capacity:   3,
			refillRate: time.Hour,
			ops:        []op{{0, true}, {0, true}, {0, true}, {0, false}},
		},
		{
			name:       "refill allows more operations",
			capacity:   2,
			refillRate: 100 * time.Millisecond,
			ops:        []op{{0, true}, {0, true}, {0, false}, {150 * time.Millisecond, true}, {0, false}},
		},
		{
			name:       "zero capacity always denies",
			capacity:   0,
			refillRate: time.Millisecond,
			ops:        []op{{0, false}, {10 * time.Millisecond, false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewTokenBucketRateLimiter(tt.capacity, tt.refillRate)
			for i, o := range tt.ops {
				time.Sleep(o.delay)
				if got := rl.Allow(); got != o.wantAllow {
					t.Errorf("op %d: Allow() = %v, want %v", i, got, o.wantAllow)
				}
			}
		})
	}
}

func TestTokenBucketRateLimiter_Reset(t *testing.T) {
	rl := NewTokenBucketRateLimiter(1, time.Hour)
	if !rl.Allow() {
		t.Fatal("first Allow() = false")
	}
	if rl.Allow() {
		t.Fatal("second Allow() = true before reset")
	}
	rl.Reset()
	if !rl.Allow() {
		t.Error("Allow() after Reset() = false")
	}
}

func TestNewRateLimiter(t *testing.T) {
	if rl := NewRateLimiter(config.RateLimitConfig{}); rl != nil {
		t.Error("expected nil limiter for zero config")
	}

	rl := NewRateLimiter(config.RateLimitConfig{Window: time.Minute, MaxMessages: 2})
	if rl == nil {
		t.Fatal("expected limiter")
	}
	if rl.refillRate != 30*time.Second {
		t.Errorf("refillRate = %v, want 30s", rl.refillRate)
	}
}
