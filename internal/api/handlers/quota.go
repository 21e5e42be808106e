package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/empire-watcher/internal/empire"
)

// QuotaHandler provides the trading API quota status endpoint.
type QuotaHandler struct {
	rl *empire.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl *empire.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		WindowLimit int64     `json:"window_limit" example:"500"                  doc:"Configured call cap per window, 0 when uncapped"`
		WindowUsed  int64     `json:"window_used"  example:"42"                   doc:"Search calls made in the current window"`
		Remaining   int64     `json:"remaining"    example:"458"                  doc:"Calls left in the window, -1 when uncapped"`
		ResetAt     time.Time `json:"reset_at"     example:"2026-06-16T14:30:00Z" doc:"When the current window expires"`
	}
}

// GetQuota returns the current search quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	resp.Body.WindowLimit = h.rl.WindowLimit()
	resp.Body.WindowUsed = h.rl.Calls()
	resp.Body.Remaining = h.rl.Remaining()
	resp.Body.ResetAt = h.rl.ResetAt()

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get search quota status",
		Description: "Returns search calls used in the current window, remaining budget, and reset time.",
		Tags:        []string{"empire"},
	}, h.GetQuota)
}
