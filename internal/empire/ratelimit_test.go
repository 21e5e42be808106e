package empire_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/empire-watcher/internal/empire"
)

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rate     float64
		burst    int
		maxCalls int64
		calls    int
		wantErr  bool
	}{
		{
			name:  "allows calls within rate",
			rate:  100,
			burst: 10,
			calls: 3,
		},
		{
			name:  "allows burst",
			rate:  100,
			burst: 5,
			calls: 5,
		},
		{
			name:     "rejects when window limit reached",
			rate:     100,
			burst:    10,
			maxCalls: 2,
			calls:    3,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rl := empire.NewRateLimiter(tt.rate, tt.burst, empire.WithWindowLimit(tt.maxCalls, time.Hour))

			var lastErr error
			for range tt.calls {
				lastErr = rl.Wait(context.Background())
				if lastErr != nil {
					break
				}
			}

			if tt.wantErr {
				require.ErrorIs(t, lastErr, empire.ErrWindowLimitReached)
			} else {
				require.NoError(t, lastErr)
			}
		})
	}
}

func TestRateLimiter_Calls(t *testing.T) {
	t.Parallel()

	rl := empire.NewRateLimiter(100, 10)

	assert.Equal(t, int64(0), rl.Calls())

	require.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(1), rl.Calls())

	require.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(2), rl.Calls())
}

func TestRateLimiter_WindowReset(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	currentTime := now

	rl := empire.NewRateLimiter(
		100, 10,
		empire.WithWindowLimit(2, time.Minute),
		empire.WithRateLimiterNowFunc(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return currentTime
		}),
	)
	assert.Equal(t, now.Add(time.Minute), rl.ResetAt())

	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))
	require.ErrorIs(t, rl.Wait(context.Background()), empire.ErrWindowLimitReached)

	// Advance past the window.
	mu.Lock()
	currentTime = now.Add(61 * time.Second)
	mu.Unlock()

	require.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(1), rl.Calls())
	assert.Equal(t, now.Add(61*time.Second+time.Minute), rl.ResetAt())
}

func TestRateLimiter_ContextCanceled(t *testing.T) {
	t.Parallel()

	// Very slow rate limiter — 1 per 10 seconds, burst 1.
	rl := empire.NewRateLimiter(0.1, 1)

	// First call should succeed (uses burst).
	require.NoError(t, rl.Wait(context.Background()))

	// Second call with canceled context should fail.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait")
}

func TestRateLimiter_Remaining(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      []empire.RateLimiterOption
		calls     int
		wantLimit int64
		wantLeft  int64
	}{
		{name: "uncapped", calls: 2, wantLimit: 0, wantLeft: -1},
		{
			name:      "capped with usage",
			opts:      []empire.RateLimiterOption{empire.WithWindowLimit(5, time.Hour)},
			calls:     3,
			wantLimit: 5,
			wantLeft:  2,
		},
		{
			name:      "capped and spent",
			opts:      []empire.RateLimiterOption{empire.WithWindowLimit(2, time.Hour)},
			calls:     2,
			wantLimit: 2,
			wantLeft:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rl := empire.NewRateLimiter(100, 10, tt.opts...)
			for range tt.calls {
				require.NoError(t, rl.Wait(t.Context()))
			}

			assert.Equal(t, tt.wantLimit, rl.WindowLimit())
			assert.Equal(t, tt.wantLeft, rl.Remaining())
		})
	}
}
