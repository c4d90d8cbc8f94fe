package meli

import (
	"sync"
	"time"
)

// RateLimiter enforces a fixed quota of calls per one-minute wall-clock
// window. The window is fixed, not sliding: the counter resets whenever more
// than a minute has passed since the window started. When the quota is
// exhausted Acquire fails fast instead of blocking, so the caller decides
// whether to abort or back off.
//
// Uses dependency injection for the clock - tests substitute a fake time
// source instead of sleeping.
type RateLimiter struct {
	mu          sync.Mutex
	limit       int
	calls       int
	windowStart time.Time
	now         func() time.Time
}

// NewRateLimiter creates a limiter allowing callsPerMinute acquisitions per
// fixed one-minute window.
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	return &RateLimiter{
		limit: callsPerMinute,
		now:   time.Now,
	}
}

// Acquire consumes one call from the current window. It returns
// ErrRateLimitExceeded when the quota is exhausted and nil otherwise.
func (r *RateLimiter) Acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.windowStart.IsZero() || now.Sub(r.windowStart) > time.Minute {
		r.windowStart = now
		r.calls = 0
	}

	if r.calls >= r.limit {
		return ErrRateLimitExceeded
	}

	r.calls++
	return nil
}
