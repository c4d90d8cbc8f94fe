package meli

import (
	"errors"
	"testing"
	"time"
)

func TestRateLimiterQuota(t *testing.T) {
	limiter := NewRateLimiter(3)

	for i := 0; i < 3; i++ {
		if err := limiter.Acquire(); err != nil {
			t.Fatalf("Call %d should be allowed, got %v", i+1, err)
		}
	}

	if err := limiter.Acquire(); !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Expected ErrRateLimitExceeded, got %v", err)
	}
}

func TestRateLimiterFixedWindowReset(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(2)
	limiter.now = func() time.Time { return now }

	// Exhaust the window.
	if err := limiter.Acquire(); err != nil {
		t.Fatalf("First call failed: %v", err)
	}
	if err := limiter.Acquire(); err != nil {
		t.Fatalf("Second call failed: %v", err)
	}
	if err := limiter.Acquire(); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("Expected quota exhausted, got %v", err)
	}

	// Within the same window the quota stays exhausted.
	now = now.Add(59 * time.Second)
	if err := limiter.Acquire(); !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Expected quota still exhausted at 59s, got %v", err)
	}

	// Crossing the window boundary resets the counter.
	now = now.Add(2 * time.Second)
	if err := limiter.Acquire(); err != nil {
		t.Errorf("Expected fresh window to allow calls, got %v", err)
	}
}

func TestRateLimiterZeroQuota(t *testing.T) {
	limiter := NewRateLimiter(0)
	if err := limiter.Acquire(); !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Expected ErrRateLimitExceeded with zero quota, got %v", err)
	}
}
