package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printRulesTable(w io.Writer, rules []domain.WatchRule) error {
	tw := newTabWriter(w)
	tw.writef("NAME\tSEARCH\tFLOAT\tPRICE\n")
	for i := range rules {
		r := &rules[i]
		tw.writef("%s\t%s\t%s\t%s\n",
			r.Name,
			r.Search,
			formatRange(r.MinFloat, r.MaxFloat, "%g"),
			formatRange(r.MinPrice, r.MaxPrice, "$%.2f"),
		)
	}
	return tw.finish()
}

func printItemsTable(w io.Writer, items []domain.CatalogItem) error {
	tw := newTabWriter(w)
	tw.writef("ID\tNAME\tFLOAT\tPRICE\tRELIABLE\tAUCTION\n")
	for i := range items {
		it := &items[i]
		tw.writef("%d\t%s\t%s\t%s\t%v\t%v\n",
			it.ID,
			truncate(it.MarketName, 48),
			formatFloat(it.Wear),
			domain.FormatPrice(it.MarketValue),
			!it.PriceIsUnreliable,
			it.InAuction(),
		)
	}
	return tw.finish()
}

func printTrackedTable(w io.Writer, tracked []domain.TrackedItem) error {
	tw := newTabWriter(w)
	tw.writef("ID\tNAME\tFLOAT\tPRICE\tNOTIFIED\tUPDATED\n")
	for i := range tracked {
		t := &tracked[i]
		tw.writef("%d\t%s\t%s\t%s\t%v\t%s\n",
			t.State.ID,
			truncate(t.State.MarketName, 48),
			formatFloat(t.State.Wear),
			domain.FormatPrice(t.State.MarketValue),
			t.HasHandle(),
			t.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return tw.finish()
}

func printTrackedDetail(w io.Writer, t *domain.TrackedItem) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%d\n", t.State.ID)
	tw.writef("Name:\t%s\n", t.State.MarketName)
	tw.writef("Float:\t%s\n", formatFloat(t.State.Wear))
	tw.writef("Price:\t%s\n", domain.FormatPrice(t.State.MarketValue))
	tw.writef("Reliable:\t%v\n", !t.State.PriceIsUnreliable)
	if t.State.CustomName != "" {
		tw.writef("Custom Name:\t%s\n", t.State.CustomName)
	}
	if t.State.PaintSeed != nil {
		tw.writef("Paint Seed:\t%d\n", *t.State.PaintSeed)
	}
	if t.State.Invalid != "" {
		tw.writef("Invalid:\t%s\n", t.State.Invalid)
	}
	handle := "-"
	if t.HasHandle() {
		handle = t.Handle
	}
	tw.writef("Notification:\t%s\n", handle)
	tw.writef("First Seen:\t%s\n", t.FirstSeenAt.Format("2006-01-02 15:04:05"))
	tw.writef("Updated:\t%s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatRange(lo, hi *float64, verb string) string {
	switch {
	case lo == nil && hi == nil:
		return "any"
	case hi == nil:
		return ">= " + fmt.Sprintf(verb, *lo)
	case lo == nil:
		return "<= " + fmt.Sprintf(verb, *hi)
	default:
		return fmt.Sprintf(verb, *lo) + " - " + fmt.Sprintf(verb, *hi)
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
