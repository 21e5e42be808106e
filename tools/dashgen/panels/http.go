package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// RequestRate charts API requests per second.
func RequestRate() *timeseries.PanelBuilder {
	return newTimeseries("Request Rate", "API requests per second (probes and /metrics excluded)", ThirdWidth).
		WithTarget(PromQuery(`ew:http_requests:rate5m`, "req/s", "A")).
		Unit("reqps").
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip())
}

// LatencyPercentiles charts p50, p95 and p99 API latency.
func LatencyPercentiles() *timeseries.PanelBuilder {
	const histogram = "ew_http_request_duration_seconds"
	return newTimeseries("Latency Percentiles", "API request duration percentiles", ThirdWidth).
		WithTarget(PromQuery(Quantile(0.50, histogram), "p50", "A")).
		WithTarget(PromQuery(Quantile(0.95, histogram), "p95", "B")).
		WithTarget(PromQuery(Quantile(0.99, histogram), "p99", "C")).
		Unit("s").
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip())
}

// ErrorRate charts the share of API requests answered with a 5xx.
func ErrorRate() *timeseries.PanelBuilder {
	return newTimeseries("Error Rate %", "5xx responses as a percentage of API requests", ThirdWidth).
		WithTarget(PromQuery(`ew:http_errors:rate5m / ew:http_requests:rate5m * 100`, "error %", "A")).
		Unit("percent").
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds())
}
