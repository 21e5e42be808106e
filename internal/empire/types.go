package empire

import "encoding/json"

// Item represents a single listing as returned by the trading API and pushed
// over the trade socket.
type Item struct {
	ID          int64    `json:"id"`
	MarketName  string   `json:"market_name"`
	MarketValue float64  `json:"market_value"`
	Wear        *float64 `json:"wear"`

	AuctionEndsAt        *int64 `json:"auction_ends_at"`
	AuctionHighestBid    *int64 `json:"auction_highest_bid"`
	AuctionHighestBidder *int64 `json:"auction_highest_bidder"`
	AuctionNumberOfBids  *int   `json:"auction_number_of_bids"`

	PriceIsUnreliable bool    `json:"price_is_unreliable"`
	Invalid           string  `json:"invalid"`
	Tradable          bool    `json:"tradable"`
	PaintSeed         *int    `json:"paint_seed"`
	CustomName        *string `json:"custom_name"`
	IconURL           string  `json:"icon_url"`
	Img               string  `json:"img"`
	PreviewID         *string `json:"preview_id"`
	NameColor         string  `json:"name_color"`
	PublishedAt       string  `json:"published_at"`
}

// tradingItemsResponse is the envelope of GET /trading/items.
type tradingItemsResponse struct {
	Data []Item `json:"data"`
}

// metadataResponse is the body of GET /metadata/socket.
type metadataResponse struct {
	User            json.RawMessage `json:"user"`
	SocketToken     string          `json:"socket_token"`
	SocketSignature string          `json:"socket_signature"`
}
