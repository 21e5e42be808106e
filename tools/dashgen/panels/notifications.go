package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// NotificationsRate charts webhook messages created and edited.
func NotificationsRate() *timeseries.PanelBuilder {
	return newTimeseries("Notifications Sent", "Webhook messages created or edited per 5 minutes", ThirdWidth).
		WithTarget(PromQuery(
			"sum by (kind) ("+Increase("ew_notifications_sent_total", "5m")+")",
			"{{kind}}", "A",
		)).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		DrawStyle(common.GraphDrawStyleBars)
}

// NotificationLatency charts the p95 webhook latency.
func NotificationLatency() *timeseries.PanelBuilder {
	return newTimeseries("Notification Latency (p95)", "95th percentile Discord webhook latency", ThirdWidth).
		WithTarget(PromQuery(`ew:notification_duration:p95_5m`, "p95", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenYellowRed(1, 5))
}

// NotificationFailures counts failed deliveries over the last day.
func NotificationFailures() *stat.PanelBuilder {
	return newStat("Notification Failures (24h)", "Failed webhook deliveries in the last 24 hours", ThirdWidth, TSHeight).
		WithTarget(PromQuery(Increase("ew_notification_failures_total", "24h"), "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
