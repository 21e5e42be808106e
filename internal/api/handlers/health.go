package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/empire-watcher/internal/empire"
)

// ReadinessChecker reports whether the watcher has finished its first
// snapshot cycle.
type ReadinessChecker interface {
	Ready() bool
}

// StreamStatus exposes the push stream connection state.
type StreamStatus interface {
	State() empire.State
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	ready  ReadinessChecker
	stream StreamStatus
}

// NewHealthHandler creates a new HealthHandler. stream may be nil when the
// push stream is disabled.
func NewHealthHandler(r ReadinessChecker, stream StreamStatus) *HealthHandler {
	return &HealthHandler{ready: r, stream: stream}
}

// StatusOutput is the response body for the probe endpoints.
type StatusOutput struct {
	Body struct {
		Status string `json:"status"           example:"ok"            doc:"Probe status"`
		Stream string `json:"stream,omitempty" example:"authenticated" doc:"Push stream state, when enabled"`
	}
}

// Healthz returns 200 while the process is running.
func (*HealthHandler) Healthz(_ context.Context, _ *struct{}) (*StatusOutput, error) {
	resp := &StatusOutput{}
	resp.Body.Status = "ok"
	return resp, nil
}

// Readyz returns 200 once the first snapshot cycle has completed, 503 before.
func (h *HealthHandler) Readyz(_ context.Context, _ *struct{}) (*StatusOutput, error) {
	if !h.ready.Ready() {
		return nil, huma.Error503ServiceUnavailable("initial snapshot has not completed")
	}

	resp := &StatusOutput{}
	resp.Body.Status = "ready"
	if h.stream != nil {
		resp.Body.Stream = h.stream.State().String()
	}
	return resp, nil
}

// RegisterHealthRoutes registers the probe endpoints with the Huma API.
func RegisterHealthRoutes(api huma.API, h *HealthHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "healthz",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Liveness check",
		Description: "Returns 200 if the process is running.",
		Tags:        []string{"health"},
	}, h.Healthz)

	huma.Register(api, huma.Operation{
		OperationID: "readyz",
		Method:      http.MethodGet,
		Path:        "/readyz",
		Summary:     "Readiness check",
		Description: "Returns 200 once the first snapshot cycle has completed, 503 otherwise.",
		Tags:        []string{"health"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.Readyz)
}
