package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// TrackedItems shows how many items are tracked.
func TrackedItems() *stat.PanelBuilder {
	return newStat("Tracked Items", "Items that matched a rule and are being tracked", ThirdWidth, TSHeight).
		WithTarget(PromQuery(JobSelector("ew_tracked_items"), "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		GraphMode(common.BigValueGraphModeArea)
}

// MatchesRate charts rule matches per minute by the path that observed them.
func MatchesRate() *timeseries.PanelBuilder {
	return newTimeseries("Matches / min", "Item observations that matched a rule, by source", ThirdWidth).
		WithTarget(PromQuery(`ew:items_matched:rate5m * 60`, "{{source}}", "A")).
		Tooltip(MultiTooltip())
}

// ChangesDetected charts tracked-field changes.
func ChangesDetected() *timeseries.PanelBuilder {
	return newTimeseries("Changes Detected", "Tracked-field changes detected per 5 minutes", ThirdWidth).
		WithTarget(PromQuery(Increase("ew_changes_detected_total", "5m"), "changes", "A")).
		DrawStyle(common.GraphDrawStyleBars)
}
