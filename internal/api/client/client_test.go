package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListRules(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerUnavailable)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{
			name:       "problem body",
			status:     http.StatusNotFound,
			body:       `{"title":"Not Found","status":404,"detail":"item 9 is not tracked"}`,
			wantDetail: "item 9 is not tracked",
		},
		{
			name:       "plain body",
			status:     http.StatusInternalServerError,
			body:       "internal\n",
			wantDetail: "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL)
			_, err := c.GetItem(context.Background(), 9)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.status == http.StatusNotFound, IsNotFound(err))
		})
	}
}

func TestClient_ListItems(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/items", r.URL.Path)
		assert.Equal(t, "karambit", r.URL.Query().Get("name"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "price", r.URL.Query().Get("order_by"))
		assert.Empty(t, r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ItemsResponse{
			Items: []domain.TrackedItem{
				{State: domain.CatalogItem{ID: 42, MarketName: "★ Karambit | Crimson Web (Field-Tested)"}, Handle: "msg-1"},
			},
			Total: 1,
			Limit: 5,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.ListItems(context.Background(), &ListItemsParams{Name: "karambit", Limit: 5, OrderBy: "price"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(42), resp.Items[0].State.ID)
	assert.Equal(t, "msg-1", resp.Items[0].Handle)
	assert.Equal(t, 1, resp.Total)
}

func TestClient_GetItem(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/items/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.TrackedItem{State: domain.CatalogItem{ID: 42, MarketValue: 260467}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	item, err := c.GetItem(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(260467), item.State.MarketValue)
}

func TestClient_TriggerSnapshot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/snapshot", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"snapshot completed","summary":{"rules":1,"matched":2,"new":2}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.TriggerSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snapshot completed", resp.Status)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 2, resp.Summary.New)
}

func TestClient_ListRules(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rules":[{"name":"StatTrak™ AK-47 Redline","search":"StatTrak™ AK-47 Redline","stattrak":true,"price_max_native":325584}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	rules, err := c.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.True(t, rules[0].StatTrak)
	assert.Equal(t, "StatTrak™ AK-47 Redline", rules[0].Name)
}

func TestClient_GetSystemStateAndQuota(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/system/state":
			_, _ = w.Write([]byte(`{"rules":2,"tracked_items":5,"ready":true,"stream":"authenticated"}`))
		case "/api/v1/quota":
			_, _ = w.Write([]byte(`{"window_limit":0,"window_used":7,"remaining":-1,"reset_at":"2026-06-15T15:30:00Z"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)

	state, err := c.GetSystemState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, state.TrackedItems)
	assert.Equal(t, "authenticated", state.Stream)

	quota, err := c.GetQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), quota.WindowUsed)
	assert.Equal(t, int64(-1), quota.Remaining)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	hc := &http.Client{}
	c := New("http://localhost:8080/", WithHTTPClient(hc))
	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
}

func TestClient_SendsHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"rules":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithUserAgent("empire-watcher/test"))
	_, err := c.ListRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "empire-watcher/test", gotUA)
	assert.Equal(t, "application/json", gotAccept)
}
