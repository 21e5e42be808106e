package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/empire-watcher/internal/api/handlers"
	"github.com/donaldgifford/empire-watcher/internal/empire"
)

func TestGetQuota(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rl         *empire.RateLimiter
		preCalls   int
		wantFields []string
	}{
		{
			name:       "nil rate limiter returns zeroes",
			rl:         nil,
			wantFields: []string{`"window_limit":0`, `"window_used":0`, `"remaining":0`},
		},
		{
			name:       "uncapped rate limiter",
			rl:         empire.NewRateLimiter(100, 10),
			preCalls:   2,
			wantFields: []string{`"window_limit":0`, `"window_used":2`, `"remaining":-1`},
		},
		{
			name:       "capped rate limiter with usage",
			rl:         empire.NewRateLimiter(100, 10, empire.WithWindowLimit(100, time.Hour)),
			preCalls:   3,
			wantFields: []string{`"window_limit":100`, `"window_used":3`, `"remaining":97`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.rl != nil {
				for range tt.preCalls {
					require.NoError(t, tt.rl.Wait(t.Context()))
				}
			}

			_, api := humatest.New(t)
			handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(tt.rl))

			resp := api.Get("/api/v1/quota")
			require.Equal(t, http.StatusOK, resp.Code)

			body := resp.Body.String()
			for _, f := range tt.wantFields {
				assert.Contains(t, body, f)
			}
			assert.Contains(t, body, `"reset_at"`)
		})
	}
}

func TestGetQuota_ResetAtValue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)
	rl := empire.NewRateLimiter(
		5, 10,
		empire.WithWindowLimit(500, time.Hour),
		empire.WithRateLimiterNowFunc(func() time.Time { return now }),
	)

	_, api := humatest.New(t)
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(rl))

	resp := api.Get("/api/v1/quota")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "2026-06-15T15:30:00Z")
}
