package main

import "errors"

// KnownMetrics is the set of metric names exported by empire-watcher plus
// recording rule names referenced in dashboards and alerts. Histogram series
// suffixes (_bucket, _sum, _count) resolve to their base name.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"ew_http_request_duration_seconds": true,
	"ew_http_requests_total":           true,

	// Health metrics.
	"ew_healthz_up": true,
	"ew_readyz_up":  true,

	// Snapshot metrics.
	"ew_snapshot_cycles_total":             true,
	"ew_snapshot_errors_total":             true,
	"ew_snapshot_duration_seconds":         true,
	"ew_scheduler_next_snapshot_timestamp": true,

	// Catalog API metrics.
	"ew_search_api_calls_total":     true,
	"ew_rate_limit_hits_total":      true,
	"ew_credential_refreshes_total": true,

	// Push stream metrics.
	"ew_stream_state":            true,
	"ew_stream_reconnects_total": true,
	"ew_stream_events_total":     true,

	// Watch metrics.
	"ew_items_matched_total":    true,
	"ew_tracked_items":          true,
	"ew_changes_detected_total": true,

	// Notification metrics.
	"ew_notifications_sent_total":      true,
	"ew_notification_failures_total":   true,
	"ew_notification_duration_seconds": true,

	// Recording rules.
	"ew:http_requests:rate5m":         true,
	"ew:http_errors:rate5m":           true,
	"ew:snapshot_errors:rate5m":       true,
	"ew:search_api_calls:rate5m":      true,
	"ew:stream_events:rate5m":         true,
	"ew:items_matched:rate5m":         true,
	"ew:notification_duration:p95_5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
