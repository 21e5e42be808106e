// Package validate checks generated dashboards and rule files: every query
// must parse as PromQL and reference only known metric names.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/empire-watcher/tools/dashgen/rules"
)

// histogramSuffixes are the series suffixes a histogram exposes under its
// base name.
var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

// Result collects validation findings. Errors fail generation; warnings are
// reported but do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

type panelDoc struct {
	Title   string      `json:"title"`
	Type    string      `json:"type"`
	Panels  []panelDoc  `json:"panels"`
	Targets []targetDoc `json:"targets"`
}

type targetDoc struct {
	Expr  string `json:"expr"`
	RefID string `json:"refId"`
}

// Dashboard validates every panel query in a built dashboard, including
// panels nested inside rows.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.errorf("marshaling dashboard: %v", err)
		return res
	}

	var doc struct {
		Panels []panelDoc `json:"panels"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		res.errorf("decoding dashboard: %v", err)
		return res
	}

	for i := range doc.Panels {
		checkPanel(&res, &doc.Panels[i], known)
	}
	return res
}

func checkPanel(res *Result, p *panelDoc, known map[string]bool) {
	if p.Type == "row" {
		for i := range p.Panels {
			checkPanel(res, &p.Panels[i], known)
		}
		return
	}

	if p.Title == "" {
		res.warnf("panel of type %q has no title", p.Type)
	}
	if len(p.Targets) == 0 {
		res.errorf("panel %q has no queries", p.Title)
		return
	}

	refs := make(map[string]bool, len(p.Targets))
	for _, t := range p.Targets {
		if refs[t.RefID] {
			res.errorf("panel %q: duplicate refId %q", p.Title, t.RefID)
		}
		refs[t.RefID] = true
		checkExpr(res, fmt.Sprintf("panel %q", p.Title), t.Expr, known)
	}
}

// Rules validates every expression in a PrometheusRule CR. Recording rules
// must be named in known so dashboards and alerts can reference them.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			if name == "" {
				res.errorf("group %q: rule with neither record nor alert name", g.Name)
				continue
			}
			if r.Record != "" && !known[r.Record] {
				res.errorf("recording rule %q is not a known metric", r.Record)
			}
			checkExpr(&res, fmt.Sprintf("rule %q", name), r.Expr, known)
		}
	}
	return res
}

// Expr validates a single PromQL expression.
func Expr(expr string, known map[string]bool) Result {
	var res Result
	checkExpr(&res, "expression", expr, known)
	return res
}

func checkExpr(res *Result, where, expr string, known map[string]bool) {
	if strings.TrimSpace(expr) == "" {
		res.errorf("%s: empty expression", where)
		return
	}

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.errorf("%s: parsing %q: %v", where, expr, err)
		return
	}

	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		if !isKnown(vs.Name, known) {
			res.errorf("%s: unknown metric %q", where, vs.Name)
		}
		return nil
	})
}

func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}
