package client

import (
	"context"
	"time"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

// SnapshotSummary mirrors the counts reported by a snapshot cycle.
type SnapshotSummary struct {
	Rules     int `json:"rules"`
	Searched  int `json:"searched"`
	Failed    int `json:"failed"`
	Fetched   int `json:"fetched"`
	Matched   int `json:"matched"`
	New       int `json:"new"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// SnapshotResponse is returned by TriggerSnapshot.
type SnapshotResponse struct {
	Status  string           `json:"status"`
	Summary *SnapshotSummary `json:"summary"`
}

// SystemState mirrors GET /api/v1/system/state.
type SystemState struct {
	Rules        int    `json:"rules"`
	TrackedItems int    `json:"tracked_items"`
	Ready        bool   `json:"ready"`
	Stream       string `json:"stream"`
}

// Quota mirrors GET /api/v1/quota.
type Quota struct {
	WindowLimit int64     `json:"window_limit"`
	WindowUsed  int64     `json:"window_used"`
	Remaining   int64     `json:"remaining"`
	ResetAt     time.Time `json:"reset_at"`
}

type rulesResponse struct {
	Rules []domain.WatchRule `json:"rules"`
}

// TriggerSnapshot runs a snapshot cycle on the server and waits for it.
func (c *Client) TriggerSnapshot(ctx context.Context) (*SnapshotResponse, error) {
	var resp SnapshotResponse
	if err := c.post(ctx, "/api/v1/snapshot", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListRules returns the server's processed watch rules.
func (c *Client) ListRules(ctx context.Context) ([]domain.WatchRule, error) {
	var resp rulesResponse
	if err := c.get(ctx, "/api/v1/rules", &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// GetSystemState returns aggregate watcher state.
func (c *Client) GetSystemState(ctx context.Context) (*SystemState, error) {
	var s SystemState
	if err := c.get(ctx, "/api/v1/system/state", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetQuota returns the search quota status.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	var q Quota
	if err := c.get(ctx, "/api/v1/quota", &q); err != nil {
		return nil, err
	}
	return &q, nil
}
