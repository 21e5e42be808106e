package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/empire-watcher/tools/dashgen/rules"
	"github.com/donaldgifford/empire-watcher/tools/dashgen/validate"
)

var known = map[string]bool{
	"ew_tracked_items":                 true,
	"ew_notification_duration_seconds": true,
	"ew:http_requests:rate5m":          true,
	"up":                               true,
}

func TestExpr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "plain metric", expr: `ew_tracked_items`},
		{name: "with matchers", expr: `ew_tracked_items{job="empire-watcher"}`},
		{name: "recording rule", expr: `ew:http_requests:rate5m * 60`},
		{
			name: "histogram bucket resolves to base",
			expr: `histogram_quantile(0.95, sum(rate(ew_notification_duration_seconds_bucket[5m])) by (le))`,
		},
		{name: "function over known metric", expr: `absent(up{job="empire-watcher"})`},
		{name: "unknown metric", expr: `ew_missing_total`, wantErr: true},
		{name: "bucket of unknown histogram", expr: `ew_missing_bucket`, wantErr: true},
		{name: "syntax error", expr: `sum(rate(ew_tracked_items[5m])`, wantErr: true},
		{name: "empty", expr: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := validate.Expr(tt.expr, known)
			if tt.wantErr {
				assert.False(t, res.Ok())
				return
			}
			assert.True(t, res.Ok(), "errors: %v", res.Errors)
		})
	}
}

func TestRules(t *testing.T) {
	t.Parallel()

	cr := rules.PrometheusRule{
		Spec: rules.PrometheusRuleSpec{
			Groups: []rules.RuleGroup{{
				Name: "g",
				Rules: []rules.Rule{
					{Record: "ew:http_requests:rate5m", Expr: `sum(rate(up[5m]))`},
					{Record: "ew:unlisted:rate5m", Expr: `up`},
					{Alert: "Broken", Expr: `up ==`},
					{Expr: `up`},
				},
			}},
		},
	}

	res := validate.Rules(cr, known)
	assert.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors[0], "ew:unlisted:rate5m")
	assert.Contains(t, res.Errors[1], "Broken")
	assert.Contains(t, res.Errors[2], "neither record nor alert")
}
