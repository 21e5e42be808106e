package domain

import "strings"

// Match reports whether item satisfies the rule's name, price and wear
// criteria. It has no side effects.
func (r *WatchRule) Match(item *CatalogItem) bool {
	if !r.matchName(item) {
		return false
	}
	if !r.matchPrice(item) {
		return false
	}
	return r.matchFloat(item)
}

// matchName requires every whitespace-separated search token to appear in
// the item name, ignoring case and order.
func (r *WatchRule) matchName(item *CatalogItem) bool {
	name := strings.ToLower(strings.TrimSpace(item.MarketName))
	for _, token := range strings.Fields(strings.ToLower(r.Search)) {
		if !strings.Contains(name, token) {
			return false
		}
	}
	return true
}

// matchPrice compares in native minor units so that an item priced exactly
// at a search bound is not lost to float rounding on the way back.
func (r *WatchRule) matchPrice(item *CatalogItem) bool {
	if lo, ok := r.PriceMinNative(); ok && item.MarketValue < lo {
		return false
	}
	if hi, ok := r.PriceMaxNative(); ok && item.MarketValue > hi {
		return false
	}
	return true
}

func (r *WatchRule) matchFloat(item *CatalogItem) bool {
	if !r.HasFloatBounds() {
		return true
	}
	if item.Wear == nil {
		return false
	}
	wear := *item.Wear
	if r.MinFloat != nil && wear < *r.MinFloat {
		return false
	}
	if r.MaxFloat != nil && wear > *r.MaxFloat {
		return false
	}
	return true
}
