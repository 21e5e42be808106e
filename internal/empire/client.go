// Package empire provides CSGOEmpire API clients abstracted behind interfaces
// for testability: the catalog search used for snapshots, the socket metadata
// endpoint that issues stream credentials, and the push-stream session.
package empire

import (
	"context"
	"encoding/json"
)

// Default endpoints.
const (
	DefaultBaseURL         = "https://csgoempire.com/api/v2"
	DefaultSocketURL       = "wss://trade.csgoempire.com/s/?EIO=4&transport=websocket"
	DefaultSocketNamespace = "/trade"
	DefaultItemURL         = "https://csgoempire.com/item/"
)

// SearchRequest defines the parameters for a catalog search. Price bounds
// are native minor units; nil means unbounded.
type SearchRequest struct {
	Search   string
	PriceMin *int64
	PriceMax *int64
	PerPage  int
	Page     int
	Sort     string // "desc"
	Order    string // "market_value"
}

// SearchResponse holds the results of a catalog search.
type SearchResponse struct {
	Items []Item
}

// CatalogClient defines the interface for searching the marketplace catalog.
type CatalogClient interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SocketCredentials authorizes a push-stream session.
type SocketCredentials struct {
	UserID    int64
	Token     string
	Signature string
	// User is the raw user object, echoed back in the identify handshake.
	User json.RawMessage
}

// CredentialProvider defines the interface for obtaining stream credentials.
type CredentialProvider interface {
	Credentials(ctx context.Context) (*SocketCredentials, error)
}
