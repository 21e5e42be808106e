package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// StreamEvents charts push-stream events per second by event name.
func StreamEvents() *timeseries.PanelBuilder {
	return newTimeseries("Stream Events", "Push-stream events received per second, by event", TSWidth).
		WithTarget(PromQuery(`ew:stream_events:rate5m`, "{{event}}", "A")).
		Unit("ops").
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip())
}

// StreamReconnects charts push-stream reconnects.
func StreamReconnects() *timeseries.PanelBuilder {
	return newTimeseries("Reconnects", "Push-stream reconnects per 5 minutes", TSWidth).
		WithTarget(PromQuery(Increase("ew_stream_reconnects_total", "5m"), "reconnects", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleBars)
}
