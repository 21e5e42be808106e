package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// SearchCallsRate charts catalog search calls per second.
func SearchCallsRate() *timeseries.PanelBuilder {
	return newTimeseries("Search Calls Rate", "Catalog search API calls per second", ThirdWidth).
		WithTarget(PromQuery(`ew:search_api_calls:rate5m`, "calls/s", "A")).
		Unit("reqps")
}

// RateLimitHits charts throttled calls split by the endpoint that was
// throttled.
func RateLimitHits() *timeseries.PanelBuilder {
	return newTimeseries("Rate Limit Hits", "Throttled calls by endpoint (search or metadata)", ThirdWidth).
		WithTarget(PromQuery(
			"sum by (source) ("+Increase("ew_rate_limit_hits_total", "5m")+")",
			"{{source}}", "A",
		)).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		DrawStyle(common.GraphDrawStyleBars)
}

// CredentialFailures counts failed socket credential refreshes over the
// last day.
func CredentialFailures() *stat.PanelBuilder {
	return newStat("Credential Failures (24h)", "Socket credential refreshes that failed in the last 24 hours", ThirdWidth, TSHeight).
		WithTarget(PromQuery(
			`increase(ew_credential_refreshes_total{job="empire-watcher",result="failure"}[24h])`,
			"", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
