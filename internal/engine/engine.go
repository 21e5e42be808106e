package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/donaldgifford/empire-watcher/internal/empire"
	"github.com/donaldgifford/empire-watcher/internal/metrics"
	"github.com/donaldgifford/empire-watcher/internal/notify"
	"github.com/donaldgifford/empire-watcher/internal/store"
	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

const (
	defaultPageSize = 10

	// Observation sources.
	SourceSnapshot = "snapshot"
	SourceStream   = "stream"
)

// Outcome is the result of reconciling one observation.
type Outcome int

// Reconcile outcomes.
const (
	OutcomeUnchanged Outcome = iota
	OutcomeNew
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNew:
		return "new"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// SnapshotSummary reports what one snapshot cycle saw.
type SnapshotSummary struct {
	Rules     int `json:"rules"`
	Searched  int `json:"searched"`
	Failed    int `json:"failed"`
	Fetched   int `json:"fetched"`
	Matched   int `json:"matched"`
	New       int `json:"new"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

func (s *SnapshotSummary) add(o Outcome) {
	switch o {
	case OutcomeNew:
		s.New++
	case OutcomeUpdated:
		s.Updated++
	default:
		s.Unchanged++
	}
}

// Engine owns the watch rules and reconciles every observed item, from
// either the catalog snapshot or the push stream, against the tracked state.
type Engine struct {
	rules      []domain.WatchRule
	store      store.Store
	catalog    empire.CatalogClient
	dispatcher *Dispatcher
	log        *slog.Logger

	pageSize      int
	staggerOffset time.Duration
	itemURL       string

	locks *itemLocks
	ready atomic.Bool
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	rules []domain.WatchRule,
	s store.Store,
	c empire.CatalogClient,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		rules:    rules,
		store:    s,
		catalog:  c,
		log:      slog.Default(),
		pageSize: defaultPageSize,
		itemURL:  empire.DefaultItemURL,
		locks:    newItemLocks(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	eng.dispatcher = NewDispatcher(n, s,
		WithDispatchLogger(eng.log),
		WithItemURL(eng.itemURL),
	)
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithStaggerOffset sets the delay between searching each rule.
func WithStaggerOffset(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.staggerOffset = d
	}
}

// WithPageSize sets the number of catalog items requested per rule.
func WithPageSize(n int) EngineOption {
	return func(e *Engine) {
		e.pageSize = n
	}
}

// WithItemURLBase sets the prefix used to link to an item page.
func WithItemURLBase(u string) EngineOption {
	return func(e *Engine) {
		e.itemURL = u
	}
}

// Rules returns the configured watch rules.
func (eng *Engine) Rules() []domain.WatchRule {
	return eng.rules
}

// Ready reports whether the first snapshot cycle has completed.
func (eng *Engine) Ready() bool {
	return eng.ready.Load()
}

// RunSnapshot searches the catalog once per rule and reconciles every
// matching item. A failing rule is logged and skipped; only context
// cancellation ends the cycle early.
func (eng *Engine) RunSnapshot(ctx context.Context) (*SnapshotSummary, error) {
	start := time.Now()
	defer func() {
		metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.SnapshotCyclesTotal.Inc()

	summary := &SnapshotSummary{Rules: len(eng.rules)}

	for i := range eng.rules {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		rule := &eng.rules[i]
		if err := eng.snapshotRule(ctx, rule, summary); err != nil {
			eng.log.Error("snapshot search failed", "rule", rule.Name, "error", err)
			metrics.SnapshotErrorsTotal.Inc()
			summary.Failed++
		} else {
			summary.Searched++
		}

		// Stagger between rules to avoid API bursts.
		if i < len(eng.rules)-1 && eng.staggerOffset > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(eng.staggerOffset):
			}
		}
	}

	eng.ready.Store(true)
	eng.log.Info("snapshot complete",
		"rules", summary.Rules,
		"failed", summary.Failed,
		"matched", summary.Matched,
		"new", summary.New,
		"updated", summary.Updated,
		"duration", time.Since(start),
	)

	return summary, nil
}

// SearchRequestFor builds the first-page catalog search for a rule, highest
// value first.
func SearchRequestFor(rule *domain.WatchRule, pageSize int) empire.SearchRequest {
	req := empire.SearchRequest{
		Search:  rule.Search,
		PerPage: pageSize,
		Page:    1,
		Sort:    "desc",
		Order:   "market_value",
	}
	if minNative, ok := rule.PriceMinNative(); ok {
		req.PriceMin = &minNative
	}
	if maxNative, ok := rule.PriceMaxNative(); ok {
		req.PriceMax = &maxNative
	}
	return req
}

func (eng *Engine) snapshotRule(
	ctx context.Context,
	rule *domain.WatchRule,
	summary *SnapshotSummary,
) error {
	resp, err := eng.catalog.Search(ctx, SearchRequestFor(rule, eng.pageSize))
	if err != nil {
		return fmt.Errorf("searching catalog for %q: %w", rule.Search, err)
	}

	items := empire.ToCatalogItems(resp.Items)
	summary.Fetched += len(items)
	eng.log.Debug("catalog search returned items", "rule", rule.Name, "count", len(items))

	for i := range items {
		item := items[i]
		// The remote search does not know about wear, so every result is
		// re-checked against the full rule.
		if !rule.Match(&item) {
			eng.log.Debug("item does not match rule",
				"rule", rule.Name,
				"id", item.ID,
				"name", item.MarketName,
				"wear", formatWear(item.Wear),
			)
			continue
		}
		metrics.ItemsMatchedTotal.WithLabelValues(SourceSnapshot).Inc()
		summary.Matched++

		outcome, err := eng.Reconcile(ctx, rule, item, SourceSnapshot)
		if err != nil {
			eng.log.Error("reconcile failed", "rule", rule.Name, "id", item.ID, "error", err)
			continue
		}
		summary.add(outcome)
	}

	return nil
}

// HandlePushedItem runs every rule over one item delivered by the stream.
func (eng *Engine) HandlePushedItem(ctx context.Context, item domain.CatalogItem) {
	for i := range eng.rules {
		rule := &eng.rules[i]
		if !rule.Match(&item) {
			continue
		}
		metrics.ItemsMatchedTotal.WithLabelValues(SourceStream).Inc()

		if _, err := eng.Reconcile(ctx, rule, item, SourceStream); err != nil {
			eng.log.Error("reconcile failed", "rule", rule.Name, "id", item.ID, "error", err)
		}
	}
}

// Reconcile records one matching observation and notifies about it when it
// is a first sighting or a tracked field changed. The whole read, diff,
// write and dispatch sequence runs under a per-item lock.
func (eng *Engine) Reconcile(
	ctx context.Context,
	rule *domain.WatchRule,
	item domain.CatalogItem,
	source string,
) (Outcome, error) {
	unlock := eng.locks.lock(item.ID)
	defer unlock()

	prev, tracked := eng.store.Get(item.ID)
	if !tracked {
		if err := eng.store.RecordNew(item.ID, item); err != nil {
			return OutcomeUnchanged, fmt.Errorf("recording new item: %w", err)
		}
		metrics.TrackedItems.Set(float64(eng.store.Len()))

		eng.logSighting("new item found", rule, &item, source, nil)
		eng.dispatcher.Notify(ctx, item, rule, nil)
		return OutcomeNew, nil
	}

	changes := domain.Diff(&prev.State, &item)
	if len(changes) == 0 {
		eng.log.Debug("already spotted this item", "rule", rule.Name, "id", item.ID, "source", source)
		return OutcomeUnchanged, nil
	}

	if err := eng.store.RecordUpdate(item.ID, item); err != nil {
		return OutcomeUnchanged, fmt.Errorf("recording item update: %w", err)
	}

	metrics.ChangesDetectedTotal.Add(float64(len(changes)))
	eng.logSighting("tracked item changed", rule, &item, source, changes)
	eng.dispatcher.Notify(ctx, item, rule, changes)
	return OutcomeUpdated, nil
}

func (eng *Engine) logSighting(
	msg string,
	rule *domain.WatchRule,
	item *domain.CatalogItem,
	source string,
	changes []string,
) {
	attrs := []any{
		"rule", rule.Name,
		"source", source,
		"id", item.ID,
		"name", item.MarketName,
		"float", formatWear(item.Wear),
		"price", domain.FormatPrice(item.MarketValue),
		"reliable", !item.PriceIsUnreliable,
		"url", eng.itemURL + strconv.FormatInt(item.ID, 10),
	}
	if item.CustomName != "" {
		attrs = append(attrs, "custom_name", item.CustomName)
	}
	if item.PaintSeed != nil {
		attrs = append(attrs, "paint_seed", *item.PaintSeed)
	}
	if item.Invalid != "" {
		attrs = append(attrs, "invalid", item.Invalid)
	}
	if len(changes) > 0 {
		attrs = append(attrs, "changes", changes)
	}
	eng.log.Info(msg, attrs...)
}

// Streamer is a long-lived push source, such as *empire.StreamClient.
type Streamer interface {
	Run(ctx context.Context) error
}

// Run performs an initial snapshot, then keeps snapshotting on interval and,
// when stream is non-nil, consumes the push stream. It blocks until ctx is
// cancelled.
func (eng *Engine) Run(ctx context.Context, interval time.Duration, stream Streamer) error {
	sched, err := NewScheduler(ctx, eng, interval, eng.log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	var wg sync.WaitGroup
	if stream != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := stream.Run(ctx); err != nil {
				eng.log.Error("stream stopped with error", "error", err)
			}
		}()
	}

	if _, err := eng.RunSnapshot(ctx); err != nil && ctx.Err() == nil {
		eng.log.Error("initial snapshot failed", "error", err)
	}

	sched.Start()
	<-ctx.Done()

	<-sched.Stop().Done()
	wg.Wait()
	return nil
}

func formatWear(w *float64) string {
	if w == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*w, 'f', -1, 64)
}
