// Package domain defines the core business types for the marketplace watcher.
package domain

import (
	"math"
	"time"
)

// StatTrakPrefix is prepended to a rule's name and search text when the rule
// targets the StatTrak variant of an item.
const StatTrakPrefix = "StatTrak™ "

// PriceMultiplier converts native coins to the display currency (USD).
// display = native minor units × PriceMultiplier ÷ 100.
const PriceMultiplier = 0.6142808

// ToDisplayPrice converts a native minor-unit amount to display currency.
func ToDisplayPrice(minor int64) float64 {
	return float64(minor) * PriceMultiplier / 100
}

// ToNativeMinor converts a display-currency amount to native minor units,
// rounded the same way the catalog search expects its price bounds.
func ToNativeMinor(display float64) int64 {
	return int64(math.Round(display / PriceMultiplier * 100))
}

// WatchRuleConfig is the raw, user-supplied definition of a watch rule.
type WatchRuleConfig struct {
	Name     string   `json:"name"                yaml:"name"`
	Search   string   `json:"search"              yaml:"search"`
	MinFloat *float64 `json:"min_float,omitempty" yaml:"min_float,omitempty"`
	MaxFloat *float64 `json:"max_float,omitempty" yaml:"max_float,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty" yaml:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty" yaml:"max_price,omitempty"`
	StatTrak bool     `json:"stattrak,omitempty"  yaml:"stattrak,omitempty"`
}

// WatchRule is an immutable, processed watch rule. Build one with
// NewWatchRule; fields are never changed afterwards.
type WatchRule struct {
	Name     string   `json:"name"`
	Search   string   `json:"search"`
	MinFloat *float64 `json:"min_float,omitempty"`
	MaxFloat *float64 `json:"max_float,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	StatTrak bool     `json:"stattrak"`
}

// NewWatchRule derives the effective rule from its configuration. StatTrak
// rules get StatTrakPrefix on both the display name and the search text.
func NewWatchRule(cfg WatchRuleConfig) WatchRule {
	r := WatchRule{
		Name:     cfg.Name,
		Search:   cfg.Search,
		MinFloat: copyFloat(cfg.MinFloat),
		MaxFloat: copyFloat(cfg.MaxFloat),
		MinPrice: copyFloat(cfg.MinPrice),
		MaxPrice: copyFloat(cfg.MaxPrice),
		StatTrak: cfg.StatTrak,
	}
	if cfg.StatTrak {
		r.Name = StatTrakPrefix + r.Name
		r.Search = StatTrakPrefix + r.Search
	}
	return r
}

// NewWatchRules processes a list of rule configurations in order.
func NewWatchRules(cfgs []WatchRuleConfig) []WatchRule {
	rules := make([]WatchRule, 0, len(cfgs))
	for i := range cfgs {
		rules = append(rules, NewWatchRule(cfgs[i]))
	}
	return rules
}

// PriceMinNative returns the lower price bound in native minor units.
func (r *WatchRule) PriceMinNative() (int64, bool) {
	if r.MinPrice == nil {
		return 0, false
	}
	return ToNativeMinor(*r.MinPrice), true
}

// PriceMaxNative returns the upper price bound in native minor units.
func (r *WatchRule) PriceMaxNative() (int64, bool) {
	if r.MaxPrice == nil {
		return 0, false
	}
	return ToNativeMinor(*r.MaxPrice), true
}

// HasFloatBounds reports whether the rule restricts wear at all.
func (r *WatchRule) HasFloatBounds() bool {
	return r.MinFloat != nil || r.MaxFloat != nil
}

// CatalogItem is a point-in-time snapshot of a marketplace listing. It is a
// value type: a newer observation replaces the old value, it is never edited.
type CatalogItem struct {
	ID          int64    `json:"id"`
	MarketName  string   `json:"market_name"`
	MarketValue int64    `json:"market_value"` // native minor units
	Wear        *float64 `json:"wear,omitempty"`

	// Auction
	AuctionEndsAt       *int64 `json:"auction_ends_at,omitempty"` // unix seconds
	AuctionHighestBid   *int64 `json:"auction_highest_bid,omitempty"`
	AuctionNumberOfBids *int   `json:"auction_number_of_bids,omitempty"`

	// Reliability
	PriceIsUnreliable bool   `json:"price_is_unreliable"`
	Invalid           string `json:"invalid,omitempty"`
	Tradable          bool   `json:"tradable"`

	// Descriptive metadata
	PaintSeed   *int       `json:"paint_seed,omitempty"`
	CustomName  string     `json:"custom_name,omitempty"`
	IconURL     string     `json:"icon_url,omitempty"`
	Image       string     `json:"img,omitempty"`
	PreviewID   string     `json:"preview_id,omitempty"`
	NameColor   string     `json:"name_color,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// DisplayPrice returns the market value in display currency.
func (c *CatalogItem) DisplayPrice() float64 {
	return ToDisplayPrice(c.MarketValue)
}

// InAuction reports whether the item carries an auction end time.
func (c *CatalogItem) InAuction() bool {
	return c.AuctionEndsAt != nil
}

// LiveAuction reports whether the item has an auction that has not ended yet.
func (c *CatalogItem) LiveAuction(now time.Time) bool {
	return c.AuctionEndsAt != nil && time.Unix(*c.AuctionEndsAt, 0).After(now)
}

// TrackedItem is the last known state of an item that matched a rule, plus
// the handle of the notification delivered for it. An empty Handle means no
// notification has been delivered yet.
type TrackedItem struct {
	State       CatalogItem `json:"state"`
	Handle      string      `json:"handle,omitempty"`
	FirstSeenAt time.Time   `json:"first_seen_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// HasHandle reports whether a notification handle is attached.
func (t *TrackedItem) HasHandle() bool {
	return t.Handle != ""
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
