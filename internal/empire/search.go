package empire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/donaldgifford/empire-watcher/internal/metrics"
)

const (
	defaultPerPage = 10
	itemsPath      = "/trading/items"
)

// SearchClient implements CatalogClient using the trading items endpoint.
// Transient failures (transport errors, 5xx, 429) are retried by the
// underlying retryablehttp client.
type SearchClient struct {
	apiKey      string
	baseURL     string
	client      *retryablehttp.Client
	rateLimiter *RateLimiter
}

// SearchOption configures the SearchClient.
type SearchOption func(*SearchClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) SearchOption {
	return func(c *SearchClient) {
		c.baseURL = u
	}
}

// WithSearchRetry overrides the retry policy of the underlying client.
func WithSearchRetry(maxRetries int, waitMin, waitMax time.Duration) SearchOption {
	return func(c *SearchClient) {
		c.client.RetryMax = maxRetries
		c.client.RetryWaitMin = waitMin
		c.client.RetryWaitMax = waitMax
	}
}

// WithSearchLogger routes retry diagnostics to l.
func WithSearchLogger(l *slog.Logger) SearchOption {
	return func(c *SearchClient) {
		c.client.Logger = l
	}
}

// WithSearchRateLimiter injects a rate limiter. When set, every Search()
// call goes through Wait() first.
func WithSearchRateLimiter(r *RateLimiter) SearchOption {
	return func(c *SearchClient) {
		c.rateLimiter = r
	}
}

// NewSearchClient creates a new catalog search client.
func NewSearchClient(apiKey string, opts ...SearchOption) *SearchClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = slog.Default()
	// Hand the final response back so non-2xx statuses become StatusError.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &SearchClient{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  rc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search implements CatalogClient.Search.
func (c *SearchClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrWindowLimitReached) {
				metrics.RateLimitHitsTotal.WithLabelValues("search").Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	metrics.SearchAPICallsTotal.Inc()

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.buildSearchURL(req), nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			RetryAfter: parseRetryAfter(resp.Header),
		}
	}

	var apiResp tradingItemsResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	return &SearchResponse{Items: apiResp.Data}, nil
}

func (c *SearchClient) buildSearchURL(req SearchRequest) string {
	params := url.Values{}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	params.Set("per_page", strconv.Itoa(perPage))

	page := req.Page
	if page <= 0 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))

	if req.Sort != "" {
		params.Set("sort", req.Sort)
	}
	if req.Order != "" {
		params.Set("order", req.Order)
	}
	if req.Search != "" {
		params.Set("search", req.Search)
	}
	if req.PriceMin != nil {
		params.Set("price_min", strconv.FormatInt(*req.PriceMin, 10))
	}
	if req.PriceMax != nil {
		params.Set("price_max", strconv.FormatInt(*req.PriceMax, 10))
	}

	return c.baseURL + itemsPath + "?" + params.Encode()
}
