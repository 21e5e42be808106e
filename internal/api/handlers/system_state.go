package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// TrackedCounter reports how many items are tracked.
type TrackedCounter interface {
	Len() int
}

// SystemState is a point-in-time summary of the watcher.
type SystemState struct {
	Rules        int    `json:"rules"         example:"3"             doc:"Configured watch rules"`
	TrackedItems int    `json:"tracked_items" example:"12"            doc:"Items with stored state"`
	Ready        bool   `json:"ready"         example:"true"          doc:"Whether the first snapshot has completed"`
	Stream       string `json:"stream"        example:"authenticated" doc:"Push stream state, or disabled"`
}

// SystemStateHandler handles GET /api/v1/system/state.
type SystemStateHandler struct {
	rules  RuleLister
	items  TrackedCounter
	ready  ReadinessChecker
	stream StreamStatus
}

// NewSystemStateHandler creates a SystemStateHandler. stream may be nil.
func NewSystemStateHandler(
	rules RuleLister,
	items TrackedCounter,
	ready ReadinessChecker,
	stream StreamStatus,
) *SystemStateHandler {
	return &SystemStateHandler{rules: rules, items: items, ready: ready, stream: stream}
}

// SystemStateOutput is the response for GET /api/v1/system/state.
type SystemStateOutput struct {
	Body *SystemState
}

// GetSystemState returns current aggregate watcher state.
func (h *SystemStateHandler) GetSystemState(
	_ context.Context,
	_ *struct{},
) (*SystemStateOutput, error) {
	state := &SystemState{
		Rules:        len(h.rules.Rules()),
		TrackedItems: h.items.Len(),
		Ready:        h.ready.Ready(),
		Stream:       "disabled",
	}
	if h.stream != nil {
		state.Stream = h.stream.State().String()
	}
	return &SystemStateOutput{Body: state}, nil
}

// RegisterSystemStateRoutes registers the system state route on the Huma API.
func RegisterSystemStateRoutes(api huma.API, h *SystemStateHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-system-state",
		Method:      http.MethodGet,
		Path:        "/api/v1/system/state",
		Summary:     "Get system state",
		Description: "Returns rule and tracked item counts, readiness and push stream state.",
		Tags:        []string{"system"},
	}, h.GetSystemState)
}
