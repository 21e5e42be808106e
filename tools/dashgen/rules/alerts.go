package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// empire-watcher operational monitoring.
func AlertRules() PrometheusRule {
	return newPrometheusRule("ew-alerts",
		RuleGroup{
			Name: "ew-alerts",
			Rules: []Rule{
				{
					Alert: "EwDown",
					Expr:  `absent(up{job="empire-watcher"})`,
					For:   "2m",
					Labels: map[string]string{
						"severity": "critical",
					},
					Annotations: map[string]string{
						"summary":     "Empire Watcher is down",
						"description": "The empire-watcher job has been absent for more than 2 minutes.",
					},
				},
				{
					Alert: "EwReadinessDown",
					Expr:  `ew_readyz_up == 0`,
					For:   "10m",
					Labels: map[string]string{
						"severity": "critical",
					},
					Annotations: map[string]string{
						"summary":     "Empire Watcher has not completed its initial snapshot",
						"description": "The readiness probe has been reporting not-ready for more than 10 minutes.",
					},
				},
				{
					Alert: "EwHighErrorRate",
					Expr:  `ew:http_errors:rate5m / ew:http_requests:rate5m > 0.05`,
					For:   "5m",
					Labels: map[string]string{
						"severity": "warning",
					},
					Annotations: map[string]string{
						"summary":     "High HTTP error rate on Empire Watcher",
						"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
					},
				},
				{
					Alert: "EwSnapshotErrors",
					Expr:  `ew:snapshot_errors:rate5m > 0`,
					For:   "15m",
					Labels: map[string]string{
						"severity": "warning",
					},
					Annotations: map[string]string{
						"summary":     "Catalog searches are failing",
						"description": "Per-rule catalog searches have been failing for more than 15 minutes.",
					},
				},
				{
					Alert: "EwStreamDisconnected",
					Expr:  `ew_stream_state < 4`,
					For:   "5m",
					Labels: map[string]string{
						"severity": "warning",
					},
					Annotations: map[string]string{
						"summary":     "Push stream is not authenticated",
						"description": "The push stream has not been in the authenticated state for more than 5 minutes.",
					},
				},
				{
					Alert: "EwCredentialRefreshFailing",
					Expr:  `increase(ew_credential_refreshes_total{result="failure"}[15m]) > 2`,
					For:   "0m",
					Labels: map[string]string{
						"severity": "warning",
					},
					Annotations: map[string]string{
						"summary":     "Socket credential refreshes are failing",
						"description": "More than two socket credential refreshes failed in the last 15 minutes. Check the API key.",
					},
				},
				{
					Alert: "EwRateLimited",
					Expr:  `increase(ew_rate_limit_hits_total[5m]) > 0`,
					For:   "10m",
					Labels: map[string]string{
						"severity": "warning",
					},
					Annotations: map[string]string{
						"summary":     "Catalog API calls are being rate limited",
						"description": "Calls to the catalog API have been throttled for more than 10 minutes.",
					},
				},
				{
					Alert: "EwNotificationFailures",
					Expr:  `increase(ew_notification_failures_total[5m]) > 0`,
					For:   "1m",
					Labels: map[string]string{
						"severity": "warning",
					},
					Annotations: map[string]string{
						"summary":     "Notification delivery failures detected",
						"description": "One or more Discord webhook deliveries have failed.",
					},
				},
			},
		},
	)
}
