package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("ew-recording-rules",
		RuleGroup{
			Name: "ew-recording",
			Rules: []Rule{
				{
					Record: "ew:http_requests:rate5m",
					Expr:   `sum(rate(ew_http_requests_total[5m]))`,
				},
				{
					Record: "ew:http_errors:rate5m",
					Expr:   `sum(rate(ew_http_requests_total{status=~"5.."}[5m]))`,
				},
				{
					Record: "ew:snapshot_errors:rate5m",
					Expr:   `rate(ew_snapshot_errors_total[5m])`,
				},
				{
					Record: "ew:search_api_calls:rate5m",
					Expr:   `rate(ew_search_api_calls_total[5m])`,
				},
				{
					Record: "ew:stream_events:rate5m",
					Expr:   `sum by (event) (rate(ew_stream_events_total[5m]))`,
				},
				{
					Record: "ew:items_matched:rate5m",
					Expr:   `sum by (source) (rate(ew_items_matched_total[5m]))`,
				},
				{
					Record: "ew:notification_duration:p95_5m",
					Expr:   `histogram_quantile(0.95, sum(rate(ew_notification_duration_seconds_bucket[5m])) by (le))`,
				},
			},
		},
	)
}
