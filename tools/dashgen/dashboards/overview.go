// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/empire-watcher/tools/dashgen/panels"
)

// BuildOverview constructs the Empire Watcher overview dashboard with all
// metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Empire Watcher Overview").
		Uid("ew-overview").
		Tags([]string{"ew", "empire-watcher"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.StreamStateStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Snapshots.
	b.WithRow(dashboard.NewRowBuilder("Snapshots").
		WithPanel(panels.NextSnapshot()).
		WithPanel(panels.SnapshotCycles()).
		WithPanel(panels.SnapshotErrors()).
		WithPanel(panels.SnapshotDuration()))

	// Row 4: Catalog API.
	b.WithRow(dashboard.NewRowBuilder("Catalog API").
		WithPanel(panels.SearchCallsRate()).
		WithPanel(panels.RateLimitHits()).
		WithPanel(panels.CredentialFailures()))

	// Row 5: Push stream.
	b.WithRow(dashboard.NewRowBuilder("Push Stream").
		WithPanel(panels.StreamEvents()).
		WithPanel(panels.StreamReconnects()))

	// Row 6: Watch.
	b.WithRow(dashboard.NewRowBuilder("Watch").
		WithPanel(panels.TrackedItems()).
		WithPanel(panels.MatchesRate()).
		WithPanel(panels.ChangesDetected()))

	// Row 7: Notifications.
	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.NotificationsRate()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
