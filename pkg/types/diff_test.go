package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

func baseItem() domain.CatalogItem {
	return domain.CatalogItem{
		ID:          42,
		MarketName:  "M4A4 | Howl (Field-Tested)",
		MarketValue: 500000,
		Wear:        ptr(0.2),
	}
}

func TestDiff_IdenticalIsEmpty(t *testing.T) {
	t.Parallel()

	auction := baseItem()
	auction.AuctionEndsAt = ptr(int64(1700000000))
	auction.AuctionHighestBid = ptr(int64(510000))
	auction.AuctionNumberOfBids = ptr(3)

	for _, item := range []domain.CatalogItem{baseItem(), auction} {
		a, b := item, item
		assert.Empty(t, domain.Diff(&a, &b))
	}
}

func TestDiff_SingleField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(old, cur *domain.CatalogItem)
		want   string
	}{
		{
			name:   "price",
			mutate: func(_, cur *domain.CatalogItem) { cur.MarketValue = 600000 },
			want:   "Price changed from " + domain.FormatPrice(500000) + " to " + domain.FormatPrice(600000),
		},
		{
			name:   "auction started",
			mutate: func(_, cur *domain.CatalogItem) { cur.AuctionEndsAt = ptr(int64(1700000000)) },
			want:   domain.ChangeAuctionStarted,
		},
		{
			name:   "auction ended",
			mutate: func(old, _ *domain.CatalogItem) { old.AuctionEndsAt = ptr(int64(1700000000)) },
			want:   domain.ChangeAuctionEnded,
		},
		{
			name:   "first bid",
			mutate: func(_, cur *domain.CatalogItem) { cur.AuctionHighestBid = ptr(int64(100)) },
			want:   "Highest bid changed from none to " + domain.FormatPrice(100),
		},
		{
			name:   "sub-cent price move",
			mutate: func(old, cur *domain.CatalogItem) { old.MarketValue, cur.MarketValue = 1004, 1005 },
			want:   "Price changed from $6.167 to $6.174",
		},
		{
			name: "sub-cent bid move",
			mutate: func(old, cur *domain.CatalogItem) {
				old.AuctionHighestBid = ptr(int64(1004))
				cur.AuctionHighestBid = ptr(int64(1005))
			},
			want: "Highest bid changed from $6.167 to $6.174",
		},
		{
			name: "bid count",
			mutate: func(old, cur *domain.CatalogItem) {
				old.AuctionNumberOfBids = ptr(1)
				cur.AuctionNumberOfBids = ptr(2)
			},
			want: "Number of bids changed from 1 to 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			old, cur := baseItem(), baseItem()
			tt.mutate(&old, &cur)
			assert.Equal(t, []string{tt.want}, domain.Diff(&old, &cur))
		})
	}
}

func TestDiff_FixedOrder(t *testing.T) {
	t.Parallel()

	old := baseItem()
	cur := baseItem()
	cur.AuctionNumberOfBids = ptr(4)
	cur.AuctionHighestBid = ptr(int64(520000))
	cur.AuctionEndsAt = ptr(int64(1700000000))
	cur.MarketValue = 520000

	changes := domain.Diff(&old, &cur)
	assert.Len(t, changes, 4)
	assert.Contains(t, changes[0], "Price changed")
	assert.Equal(t, domain.ChangeAuctionStarted, changes[1])
	assert.Contains(t, changes[2], "Highest bid changed")
	assert.Equal(t, "Number of bids changed from 0 to 4", changes[3])
}

func TestDiff_IgnoresUntrackedFields(t *testing.T) {
	t.Parallel()

	old, cur := baseItem(), baseItem()
	cur.CustomName = "renamed"
	cur.Wear = ptr(0.5)
	cur.PriceIsUnreliable = true

	assert.Empty(t, domain.Diff(&old, &cur))
}

func TestDiff_AbsentAndZeroBidsAreEqual(t *testing.T) {
	t.Parallel()

	old, cur := baseItem(), baseItem()
	cur.AuctionNumberOfBids = ptr(0)

	assert.Empty(t, domain.Diff(&old, &cur))
}

func TestDiff_AuctionEndTimeMovedIsNotATransition(t *testing.T) {
	t.Parallel()

	old, cur := baseItem(), baseItem()
	old.AuctionEndsAt = ptr(int64(1700000000))
	cur.AuctionEndsAt = ptr(int64(1700000300))

	assert.Empty(t, domain.Diff(&old, &cur))
}
