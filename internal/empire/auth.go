package empire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/donaldgifford/empire-watcher/internal/metrics"
)

const (
	metadataPath = "/metadata/socket"

	defaultCredentialTTL    = 15 * time.Second
	defaultMaxRetries       = 3
	defaultRateLimitBackoff = 5 * time.Second
	defaultRetryBackoff     = 5 * time.Second
)

// MetadataProvider implements CredentialProvider using the socket metadata
// endpoint. Credentials are cached for a short freshness window; refreshes
// inside the window reuse the cached value. 429 responses are retried after
// the server's Retry-After delay and other failures after a fixed delay, up
// to maxRetries retries. Thread-safe via mutex.
type MetadataProvider struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	log        *slog.Logger
	ttl        time.Duration
	maxRetries int

	rateLimitBackoff time.Duration
	retryBackoff     time.Duration

	mu          sync.Mutex
	creds       *SocketCredentials
	refreshedAt time.Time
	nowFunc     func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// MetadataOption configures the MetadataProvider.
type MetadataOption func(*MetadataProvider)

// WithMetadataURL overrides the API base URL.
func WithMetadataURL(u string) MetadataOption {
	return func(p *MetadataProvider) {
		p.baseURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) MetadataOption {
	return func(p *MetadataProvider) {
		p.client = c
	}
}

// WithMetadataLogger sets a custom logger.
func WithMetadataLogger(l *slog.Logger) MetadataOption {
	return func(p *MetadataProvider) {
		p.log = l
	}
}

// WithCredentialTTL sets the freshness window of cached credentials.
func WithCredentialTTL(d time.Duration) MetadataOption {
	return func(p *MetadataProvider) {
		p.ttl = d
	}
}

// WithMaxRetries sets how many times a failed refresh is retried.
func WithMaxRetries(n int) MetadataOption {
	return func(p *MetadataProvider) {
		p.maxRetries = n
	}
}

// WithBackoff sets the fallback delay after a 429 without Retry-After and
// the delay after any other failure.
func WithBackoff(rateLimited, other time.Duration) MetadataOption {
	return func(p *MetadataProvider) {
		p.rateLimitBackoff = rateLimited
		p.retryBackoff = other
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) MetadataOption {
	return func(p *MetadataProvider) {
		p.nowFunc = f
	}
}

// WithSleepFunc overrides how retry delays are waited out, for testing.
func WithSleepFunc(f func(ctx context.Context, d time.Duration) error) MetadataOption {
	return func(p *MetadataProvider) {
		p.sleep = f
	}
}

// NewMetadataProvider creates a new socket credential provider.
func NewMetadataProvider(apiKey string, opts ...MetadataOption) *MetadataProvider {
	p := &MetadataProvider{
		apiKey:           apiKey,
		baseURL:          DefaultBaseURL,
		client:           &http.Client{Timeout: 10 * time.Second},
		log:              slog.Default(),
		ttl:              defaultCredentialTTL,
		maxRetries:       defaultMaxRetries,
		rateLimitBackoff: defaultRateLimitBackoff,
		retryBackoff:     defaultRetryBackoff,
		nowFunc:          time.Now,
		sleep:            sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Credentials returns fresh stream credentials, refreshing if the cached
// ones are older than the freshness window.
func (p *MetadataProvider) Credentials(ctx context.Context) (*SocketCredentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.creds != nil && p.nowFunc().Sub(p.refreshedAt) < p.ttl {
		return p.creds, nil
	}

	return p.refreshLocked(ctx)
}

func (p *MetadataProvider) refreshLocked(ctx context.Context) (*SocketCredentials, error) {
	for attempt := 0; ; attempt++ {
		creds, err := p.fetch(ctx)
		if err == nil {
			p.creds = creds
			p.refreshedAt = p.nowFunc()
			metrics.CredentialRefreshesTotal.WithLabelValues("success").Inc()
			p.log.Debug("socket credentials refreshed", "user_id", creds.UserID)
			return creds, nil
		}

		if attempt >= p.maxRetries || ctx.Err() != nil {
			metrics.CredentialRefreshesTotal.WithLabelValues("failure").Inc()
			return nil, fmt.Errorf("refreshing socket credentials after %d attempts: %w", attempt+1, err)
		}

		wait := p.retryBackoff
		var statusErr *StatusError
		if errors.As(err, &statusErr) && errors.Is(err, ErrRateLimited) {
			metrics.RateLimitHitsTotal.WithLabelValues("metadata").Inc()
			wait = statusErr.RetryAfter
			if wait <= 0 {
				wait = p.rateLimitBackoff
			}
			p.log.Warn("rate limited refreshing socket credentials",
				"wait", wait,
				"retry", attempt+1,
				"max_retries", p.maxRetries,
			)
		} else {
			p.log.Warn("failed to refresh socket credentials",
				"error", err,
				"retry", attempt+1,
				"max_retries", p.maxRetries,
			)
		}

		if err := p.sleep(ctx, wait); err != nil {
			return nil, fmt.Errorf("waiting to retry credential refresh: %w", err)
		}
	}
}

func (p *MetadataProvider) fetch(ctx context.Context) (*SocketCredentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+metadataPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating metadata request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing metadata request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading metadata response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			RetryAfter: parseRetryAfter(resp.Header),
		}
	}

	var meta metadataResponse
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata response: %w", err)
	}

	userID := gjson.GetBytes(meta.User, "id")
	if !userID.Exists() || meta.SocketToken == "" {
		return nil, fmt.Errorf("metadata response missing user id or socket token")
	}

	return &SocketCredentials{
		UserID:    userID.Int(),
		Token:     meta.SocketToken,
		Signature: meta.SocketSignature,
		User:      meta.User,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
