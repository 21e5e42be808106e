package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

func upStat(title, description, metric string) *stat.PanelBuilder {
	return newStat(title, description, StatWidth, StatHeight).
		WithTarget(PromQuery(metric, "", "A")).
		Thresholds(ThresholdsRedGreen(1)).
		ColorMode(common.BigValueColorModeBackground).
		TextMode(common.BigValueTextModeValue)
}

// HealthzStat shows the liveness probe gauge.
func HealthzStat() *stat.PanelBuilder {
	return upStat("Healthz", "Liveness probe (1 = ok, 0 = failing)", "ew_healthz_up")
}

// ReadyzStat shows the readiness gauge, which turns 1 after the first
// completed snapshot.
func ReadyzStat() *stat.PanelBuilder {
	return upStat("Readyz", "Readiness (1 = initial snapshot done)", "ew_readyz_up")
}

// StreamStateStat shows the push-stream session state.
func StreamStateStat() *stat.PanelBuilder {
	return newStat("Stream", "Push-stream state (0 disconnected .. 4 authenticated)", StatWidth, StatHeight).
		WithTarget(PromQuery(JobSelector("ew_stream_state"), "", "A")).
		Thresholds(ThresholdsRedGreen(StreamAuthenticated)).
		ColorMode(common.BigValueColorModeBackground).
		TextMode(common.BigValueTextModeValue)
}

// UptimeStat shows time since process start.
func UptimeStat() *stat.PanelBuilder {
	return newStat("Uptime", "Time since process start", StatWidth, StatHeight).
		WithTarget(PromQuery("time() - "+JobSelector("process_start_time_seconds"), "", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenOnly())
}
