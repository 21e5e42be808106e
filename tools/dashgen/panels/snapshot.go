package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// NextSnapshot shows the time until the scheduler's next snapshot.
func NextSnapshot() *stat.PanelBuilder {
	return newStat("Next Snapshot", "Time until the next scheduled snapshot cycle", StatWidth, StatHeight).
		WithTarget(PromQuery(JobSelector("ew_scheduler_next_snapshot_timestamp")+" - time()", "", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorMode(common.BigValueColorModeBackground)
}

// SnapshotCycles counts snapshot cycles over the last day.
func SnapshotCycles() *stat.PanelBuilder {
	return newStat("Snapshots (24h)", "Snapshot cycles run in the last 24 hours", StatWidth, StatHeight).
		WithTarget(PromQuery(Increase("ew_snapshot_cycles_total", "24h"), "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		GraphMode(common.BigValueGraphModeArea)
}

// SnapshotErrors charts failed per-rule searches per minute.
func SnapshotErrors() *timeseries.PanelBuilder {
	return newTimeseries("Search Failures / min", "Per-rule catalog searches that failed during a snapshot", StatWidth).
		WithTarget(PromQuery(`ew:snapshot_errors:rate5m * 60`, "failures/min", "A")).
		Thresholds(ThresholdsGreenYellowRed(0.1, 1)).
		ColorScheme(ColorSchemeThresholds())
}

// SnapshotDuration charts the p95 snapshot cycle duration.
func SnapshotDuration() *timeseries.PanelBuilder {
	return newTimeseries("Cycle Duration (p95)", "95th percentile snapshot cycle duration", StatWidth).
		WithTarget(PromQuery(Quantile(0.95, "ew_snapshot_duration_seconds"), "p95", "A")).
		Unit("s")
}
