package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

// RuleLister returns the configured watch rules.
type RuleLister interface {
	Rules() []domain.WatchRule
}

// RulesHandler serves the effective watch rules.
type RulesHandler struct {
	rules RuleLister
}

// NewRulesHandler creates a new RulesHandler.
func NewRulesHandler(r RuleLister) *RulesHandler {
	return &RulesHandler{rules: r}
}

// RuleView is a watch rule plus the native price bounds sent to the catalog.
type RuleView struct {
	domain.WatchRule
	PriceMinNative *int64 `json:"price_min_native,omitempty" doc:"Lower price bound in native minor units"`
	PriceMaxNative *int64 `json:"price_max_native,omitempty" doc:"Upper price bound in native minor units"`
}

// ListRulesOutput is the response for GET /api/v1/rules.
type ListRulesOutput struct {
	Body struct {
		Rules []RuleView `json:"rules"`
	}
}

// ListRules returns the watch rules in configuration order.
func (h *RulesHandler) ListRules(_ context.Context, _ *struct{}) (*ListRulesOutput, error) {
	rules := h.rules.Rules()

	resp := &ListRulesOutput{}
	resp.Body.Rules = make([]RuleView, 0, len(rules))
	for i := range rules {
		v := RuleView{WatchRule: rules[i]}
		if n, ok := rules[i].PriceMinNative(); ok {
			v.PriceMinNative = &n
		}
		if n, ok := rules[i].PriceMaxNative(); ok {
			v.PriceMaxNative = &n
		}
		resp.Body.Rules = append(resp.Body.Rules, v)
	}
	return resp, nil
}

// RegisterRulesRoutes registers the rules endpoint with the Huma API.
func RegisterRulesRoutes(api huma.API, h *RulesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-rules",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules",
		Summary:     "List watch rules",
		Description: "Returns the processed watch rules, including StatTrak prefixes and native price bounds.",
		Tags:        []string{"rules"},
	}, h.ListRules)
}
