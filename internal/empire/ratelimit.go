package empire

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrWindowLimitReached is returned when the per-window call budget is spent.
var ErrWindowLimitReached = errors.New("API window limit reached")

// RateLimiter paces calls to the trading API. A token bucket smooths bursts
// across rules, and an optional rolling window caps the number of calls the
// watcher may spend before the window resets.
type RateLimiter struct {
	limiter  *rate.Limiter
	calls    atomic.Int64
	maxCalls int64
	window   time.Duration
	resetAt  time.Time
	mu       sync.Mutex
	nowFunc  func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// WithWindowLimit caps calls to maxCalls per window. A zero maxCalls
// disables the cap.
func WithWindowLimit(maxCalls int64, window time.Duration) RateLimiterOption {
	return func(r *RateLimiter) {
		r.maxCalls = maxCalls
		r.window = window
	}
}

// NewRateLimiter creates a rate limiter with the given per-second rate and
// burst size.
func NewRateLimiter(perSecond float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	r := &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(r.window)
	return r
}

// Wait blocks until the call is allowed or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.checkWindowReset()

	if r.maxCalls > 0 && r.calls.Load() >= r.maxCalls {
		return fmt.Errorf("%w (%d/%d)", ErrWindowLimitReached, r.calls.Load(), r.maxCalls)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	r.calls.Add(1)
	return nil
}

// Calls returns the number of calls made in the current window.
func (r *RateLimiter) Calls() int64 {
	return r.calls.Load()
}

// WindowLimit returns the configured per-window cap; zero means uncapped.
func (r *RateLimiter) WindowLimit() int64 {
	return r.maxCalls
}

// Remaining returns the calls left in the current window, or -1 when the
// window is uncapped.
func (r *RateLimiter) Remaining() int64 {
	if r.maxCalls <= 0 {
		return -1
	}
	return max(r.maxCalls-r.calls.Load(), 0)
}

// ResetAt returns when the current window expires.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}

func (r *RateLimiter) checkWindowReset() {
	if r.window <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.calls.Store(0)
		r.resetAt = now.Add(r.window)
	}
}
