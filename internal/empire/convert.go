package empire

import (
	"math"
	"time"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

var publishedAtLayouts = []string{time.RFC3339, "2006-01-02 15:04:05"}

// ToCatalogItems converts API items into domain catalog items.
func ToCatalogItems(items []Item) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(items))
	for i := range items {
		out = append(out, ToCatalogItem(&items[i]))
	}
	return out
}

// ToCatalogItem converts a single API item into a domain catalog item.
func ToCatalogItem(item *Item) domain.CatalogItem {
	c := domain.CatalogItem{
		ID:                  item.ID,
		MarketName:          item.MarketName,
		MarketValue:         int64(math.Round(item.MarketValue)),
		Wear:                item.Wear,
		AuctionEndsAt:       item.AuctionEndsAt,
		AuctionHighestBid:   item.AuctionHighestBid,
		AuctionNumberOfBids: item.AuctionNumberOfBids,
		PriceIsUnreliable:   item.PriceIsUnreliable,
		Invalid:             item.Invalid,
		Tradable:            item.Tradable,
		PaintSeed:           item.PaintSeed,
		IconURL:             item.IconURL,
		Image:               item.Img,
		NameColor:           item.NameColor,
	}

	if item.CustomName != nil {
		c.CustomName = *item.CustomName
	}
	if item.PreviewID != nil {
		c.PreviewID = *item.PreviewID
	}

	// Published timestamp
	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, item.PublishedAt); err == nil {
			c.PublishedAt = &t
			break
		}
	}

	return c
}
