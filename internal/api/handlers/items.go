package handlers

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

const defaultItemsLimit = 50

// ItemReader reads tracked item state.
type ItemReader interface {
	Get(id int64) (domain.TrackedItem, bool)
	List() []domain.TrackedItem
}

// ItemsHandler handles tracked item query endpoints.
type ItemsHandler struct {
	items ItemReader
}

// NewItemsHandler creates a new ItemsHandler.
func NewItemsHandler(r ItemReader) *ItemsHandler {
	return &ItemsHandler{items: r}
}

// --- Input/Output types ---

// ListItemsInput is the input for listing tracked items.
type ListItemsInput struct {
	Name    string `query:"name"     doc:"Case-insensitive substring of the market name"`
	Limit   int    `query:"limit"    doc:"Number of results (default 50)"                minimum:"1" maximum:"1000"`
	Offset  int    `query:"offset"   doc:"Pagination offset"                             minimum:"0"`
	OrderBy string `query:"order_by" doc:"Sort field"                                    enum:"id,price,updated_at,"`
}

// ListItemsOutput is the response for listing tracked items.
type ListItemsOutput struct {
	Body struct {
		Items  []domain.TrackedItem `json:"items"`
		Total  int                  `json:"total"`
		Limit  int                  `json:"limit"`
		Offset int                  `json:"offset"`
	}
}

// GetItemInput is the input for getting a single tracked item.
type GetItemInput struct {
	ID int64 `path:"id" doc:"Catalog item id"`
}

// GetItemOutput is the response for getting a single tracked item.
type GetItemOutput struct {
	Body domain.TrackedItem
}

// --- Handlers ---

// ListItems returns tracked items with optional name filtering, ordering
// and pagination.
func (h *ItemsHandler) ListItems(
	_ context.Context,
	input *ListItemsInput,
) (*ListItemsOutput, error) {
	items := h.items.List()

	if input.Name != "" {
		needle := strings.ToLower(input.Name)
		items = slices.DeleteFunc(items, func(t domain.TrackedItem) bool {
			return !strings.Contains(strings.ToLower(t.State.MarketName), needle)
		})
	}

	switch input.OrderBy {
	case "price":
		slices.SortStableFunc(items, func(a, b domain.TrackedItem) int {
			return cmp.Compare(b.State.MarketValue, a.State.MarketValue)
		})
	case "updated_at":
		slices.SortStableFunc(items, func(a, b domain.TrackedItem) int {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		})
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultItemsLimit
	}

	resp := &ListItemsOutput{}
	resp.Body.Total = len(items)
	resp.Body.Limit = limit
	resp.Body.Offset = input.Offset

	start := min(input.Offset, len(items))
	end := min(start+limit, len(items))
	resp.Body.Items = items[start:end]

	return resp, nil
}

// GetItem returns a single tracked item by catalog id.
func (h *ItemsHandler) GetItem(
	_ context.Context,
	input *GetItemInput,
) (*GetItemOutput, error) {
	t, ok := h.items.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound(fmt.Sprintf("item %d is not tracked", input.ID))
	}
	return &GetItemOutput{Body: t}, nil
}

// RegisterItemRoutes registers tracked item endpoints with the Huma API.
func RegisterItemRoutes(api huma.API, h *ItemsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-items",
		Method:      http.MethodGet,
		Path:        "/api/v1/items",
		Summary:     "List tracked items",
		Description: "Returns items that matched a watch rule, with their last known state and notification handle.",
		Tags:        []string{"items"},
	}, h.ListItems)

	huma.Register(api, huma.Operation{
		OperationID: "get-item",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}",
		Summary:     "Get a tracked item",
		Description: "Returns a single tracked item by catalog id.",
		Tags:        []string{"items"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetItem)
}
