package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/empire-watcher/internal/engine"
)

// SnapshotRunner runs one snapshot cycle on demand.
type SnapshotRunner interface {
	RunSnapshot(ctx context.Context) (*engine.SnapshotSummary, error)
}

// SnapshotHandler handles manual snapshot trigger requests.
type SnapshotHandler struct {
	runner SnapshotRunner
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(r SnapshotRunner) *SnapshotHandler {
	return &SnapshotHandler{runner: r}
}

// SnapshotOutput is the response body for the snapshot endpoint.
type SnapshotOutput struct {
	Body struct {
		Status  string                 `json:"status"  example:"snapshot completed" doc:"Snapshot status"`
		Summary *engine.SnapshotSummary `json:"summary" doc:"Per-cycle counts"`
	}
}

// Snapshot runs a full snapshot cycle across every watch rule.
func (h *SnapshotHandler) Snapshot(ctx context.Context, _ *struct{}) (*SnapshotOutput, error) {
	summary, err := h.runner.RunSnapshot(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("snapshot failed: " + err.Error())
	}

	resp := &SnapshotOutput{}
	resp.Body.Status = "snapshot completed"
	resp.Body.Summary = summary
	return resp, nil
}

// RegisterTriggerRoutes registers trigger endpoints with the Huma API.
func RegisterTriggerRoutes(api huma.API, h *SnapshotHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-snapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/snapshot",
		Summary:     "Trigger a snapshot cycle",
		Description: "Searches the catalog once per watch rule and reconciles every match, " +
			"sending or editing notifications as needed.",
		Tags:   []string{"snapshot"},
		Errors: []int{http.StatusInternalServerError},
	}, h.Snapshot)
}
