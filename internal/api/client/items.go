package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

// ItemsResponse wraps a paginated tracked items response.
type ItemsResponse struct {
	Items  []domain.TrackedItem `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// ListItemsParams defines query parameters for tracked item queries.
type ListItemsParams struct {
	Name    string
	Limit   int
	Offset  int
	OrderBy string
}

// ListItems returns tracked items matching the given parameters.
func (c *Client) ListItems(ctx context.Context, params *ListItemsParams) (*ItemsResponse, error) {
	q := url.Values{}
	if params.Name != "" {
		q.Set("name", params.Name)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.OrderBy != "" {
		q.Set("order_by", params.OrderBy)
	}

	path := "/api/v1/items"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ItemsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetItem returns a single tracked item by catalog id.
func (c *Client) GetItem(ctx context.Context, id int64) (*domain.TrackedItem, error) {
	var item domain.TrackedItem
	if err := c.get(ctx, fmt.Sprintf("/api/v1/items/%d", id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}
