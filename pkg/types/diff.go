package domain

import (
	"fmt"
	"strconv"
)

// Change descriptions for auction lifecycle transitions.
const (
	ChangeAuctionStarted = "Item is now in auction"
	ChangeAuctionEnded   = "Auction has ended"
)

// Diff returns the user-visible changes between two snapshots of the same
// item, in a fixed order: price, auction start/end, highest bid, bid count.
// An empty result means nothing worth notifying about changed.
func Diff(old, cur *CatalogItem) []string {
	var changes []string

	if old.MarketValue != cur.MarketValue {
		from, to := formatPriceChange(old.MarketValue, cur.MarketValue)
		changes = append(changes, fmt.Sprintf("Price changed from %s to %s", from, to))
	}

	switch {
	case old.AuctionEndsAt == nil && cur.AuctionEndsAt != nil:
		changes = append(changes, ChangeAuctionStarted)
	case old.AuctionEndsAt != nil && cur.AuctionEndsAt == nil:
		changes = append(changes, ChangeAuctionEnded)
	}

	if !equalInt64(old.AuctionHighestBid, cur.AuctionHighestBid) {
		from, to := formatBidChange(old.AuctionHighestBid, cur.AuctionHighestBid)
		changes = append(changes, fmt.Sprintf("Highest bid changed from %s to %s", from, to))
	}

	// An absent bid count and zero bids are the same thing to a user.
	if oldBids, curBids := bidCount(old.AuctionNumberOfBids), bidCount(cur.AuctionNumberOfBids); oldBids != curBids {
		changes = append(changes, fmt.Sprintf("Number of bids changed from %s to %s",
			strconv.Itoa(oldBids), strconv.Itoa(curBids)))
	}

	return changes
}

// maxPricePrecision caps the decimals used to tell two close prices apart.
const maxPricePrecision = 6

// FormatPrice renders a native minor-unit amount in display currency.
func FormatPrice(minor int64) string {
	return formatPriceAt(minor, 2)
}

func formatPriceAt(minor int64, prec int) string {
	return "$" + strconv.FormatFloat(ToDisplayPrice(minor), 'f', prec, 64)
}

// formatPriceChange renders two different amounts with enough decimals that
// they do not read the same.
func formatPriceChange(from, to int64) (string, string) {
	prec := 2
	for ; prec < maxPricePrecision; prec++ {
		if formatPriceAt(from, prec) != formatPriceAt(to, prec) {
			break
		}
	}
	return formatPriceAt(from, prec), formatPriceAt(to, prec)
}

func formatBidChange(from, to *int64) (string, string) {
	switch {
	case from != nil && to != nil:
		return formatPriceChange(*from, *to)
	case from != nil:
		return FormatPrice(*from), "none"
	case to != nil:
		return "none", FormatPrice(*to)
	default:
		return "none", "none"
	}
}

func bidCount(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func equalInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
