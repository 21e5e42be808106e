package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/empire-watcher/internal/empire"
	"github.com/donaldgifford/empire-watcher/internal/metrics"
	"github.com/donaldgifford/empire-watcher/internal/notify"
	"github.com/donaldgifford/empire-watcher/internal/store"
	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

const steamImageURL = "https://steamcommunity-a.akamaihd.net/economy/image/"

// Dispatcher renders sighting notifications and delivers them, creating a
// message on first sighting and editing that same message afterwards.
type Dispatcher struct {
	notifier notify.Notifier
	store    store.Store
	log      *slog.Logger
	itemURL  string
	nowFunc  func() time.Time
}

// DispatchOption configures the Dispatcher.
type DispatchOption func(*Dispatcher)

// WithDispatchLogger sets a custom logger.
func WithDispatchLogger(l *slog.Logger) DispatchOption {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// WithItemURL sets the prefix used to link to an item page.
func WithItemURL(u string) DispatchOption {
	return func(d *Dispatcher) {
		d.itemURL = u
	}
}

// WithDispatchNowFunc overrides the time function for testing.
func WithDispatchNowFunc(f func() time.Time) DispatchOption {
	return func(d *Dispatcher) {
		d.nowFunc = f
	}
}

// NewDispatcher creates a Dispatcher that records handles in s.
func NewDispatcher(n notify.Notifier, s store.Store, opts ...DispatchOption) *Dispatcher {
	d := &Dispatcher{
		notifier: n,
		store:    s,
		log:      slog.Default(),
		itemURL:  empire.DefaultItemURL,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify delivers a notification for item. Without a stored handle a new
// message is created and its handle recorded; otherwise the existing message
// is edited to include changes. Delivery failures are logged and counted,
// never returned.
func (d *Dispatcher) Notify(
	ctx context.Context,
	item domain.CatalogItem,
	rule *domain.WatchRule,
	changes []string,
) {
	tracked, ok := d.store.Get(item.ID)
	if ok && tracked.HasHandle() {
		payload := d.Render(&item, rule, changes)
		if err := d.notifier.Edit(ctx, tracked.Handle, payload); err != nil {
			d.log.Error("editing notification failed",
				"id", item.ID,
				"handle", tracked.Handle,
				"error", err,
			)
			metrics.NotificationFailuresTotal.Inc()
		}
		return
	}

	payload := d.Render(&item, rule, nil)
	handle, err := d.notifier.Create(ctx, payload)
	if err != nil {
		d.log.Error("sending notification failed", "id", item.ID, "error", err)
		metrics.NotificationFailuresTotal.Inc()
		return
	}

	if err := d.store.SetHandle(item.ID, handle); err != nil {
		d.log.Error("recording notification handle failed", "id", item.ID, "error", err)
	}
}

// Render builds the notification payload. A nil changes slice renders a
// first sighting; otherwise an update listing changes.
func (d *Dispatcher) Render(
	item *domain.CatalogItem,
	rule *domain.WatchRule,
	changes []string,
) *notify.ItemPayload {
	itemURL := d.itemURL + strconv.FormatInt(item.ID, 10)

	var desc strings.Builder
	fmt.Fprintf(&desc, "Found item: %s\n[View on CSGOEmpire](%s)", item.MarketName, itemURL)

	title := fmt.Sprintf("New %s Found!", rule.Name)
	if changes != nil {
		title = fmt.Sprintf("%s Updated", rule.Name)
		desc.WriteString("\n\n**Changes:**")
		for _, c := range changes {
			desc.WriteString("\n• " + c)
		}
	}

	fields := []notify.Field{
		{Name: "Float", Value: formatWear(item.Wear), Inline: true},
		{Name: "Price", Value: domain.FormatPrice(item.MarketValue), Inline: true},
	}
	if item.CustomName != "" {
		fields = append(fields, notify.Field{Name: "Custom Name", Value: item.CustomName, Inline: true})
	}
	if item.PaintSeed != nil {
		fields = append(fields, notify.Field{Name: "Paint Seed", Value: strconv.Itoa(*item.PaintSeed), Inline: true})
	}
	fields = append(fields,
		d.actionField(item),
		notify.Field{Name: "Status", Value: reliability(item)},
	)

	payload := &notify.ItemPayload{
		Title:       title,
		Description: desc.String(),
		URL:         itemURL,
		Color:       parseColor(item.NameColor),
		Fields:      fields,
		Timestamp:   d.nowFunc(),
	}
	if item.IconURL != "" {
		payload.ThumbnailURL = steamImageURL + item.IconURL
	}
	if strings.HasPrefix(item.Image, "http") {
		payload.ImageURL = item.Image
	}

	return payload
}

func (d *Dispatcher) actionField(item *domain.CatalogItem) notify.Field {
	if !item.LiveAuction(d.nowFunc()) {
		return notify.Field{Name: "Action", Value: "Buy now", Inline: false}
	}

	bid := "none"
	if item.AuctionHighestBid != nil {
		bid = domain.FormatPrice(*item.AuctionHighestBid)
	}
	bids := 0
	if item.AuctionNumberOfBids != nil {
		bids = *item.AuctionNumberOfBids
	}

	// <t:unix:R> renders as a relative time in the Discord client.
	return notify.Field{
		Name:  "Action",
		Value: fmt.Sprintf("Auction ends <t:%d:R>, highest bid %s (%d bids)", *item.AuctionEndsAt, bid, bids),
	}
}

func reliability(item *domain.CatalogItem) string {
	lines := []string{"✅ Price Reliable"}
	if item.PriceIsUnreliable {
		lines[0] = "⚠️ Price Unreliable"
	}
	if item.Invalid != "" {
		lines = append(lines, "⚠️ "+item.Invalid)
	}
	return strings.Join(lines, "\n")
}

// parseColor reads a hex colour such as "8650AC" or "#8650AC"; anything
// else yields 0.
func parseColor(hex string) int {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || v < 0 {
		return 0
	}
	return int(v)
}
