package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/empire-watcher/internal/metrics"
)

func testPayload() ItemPayload {
	return ItemPayload{
		Title:       "New Karambit | Crimson Web Found!",
		Description: "Found item: ★ Karambit | Crimson Web (Factory New)",
		URL:         "https://csgoempire.com/item/42",
		Color:       0x8650AC,
		Fields: []Field{
			{Name: "Float", Value: "0.0412", Inline: true},
			{Name: "Price", Value: "$1500.00", Inline: true},
			{Name: "Status", Value: "✅ Price Reliable"},
		},
		ThumbnailURL: "https://steamcommunity-a.akamaihd.net/economy/image/abc",
		ImageURL:     "https://csgoempire.com/img/abc.png",
		Timestamp:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDiscordNotifier_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
		errMsg     string
		wantID     string
	}{
		{
			name:       "returns message id",
			statusCode: http.StatusOK,
			body:       `{"id":"1234567890","channel_id":"1"}`,
			wantID:     "1234567890",
		},
		{
			name:       "discord returns 429 rate limited",
			statusCode: http.StatusTooManyRequests,
			body:       `{"retry_after":1.5}`,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "discord returns 400 error",
			statusCode: http.StatusBadRequest,
			body:       `{"message":"Invalid Form Body"}`,
			wantErr:    true,
			errMsg:     "discord returned 400",
		},
		{
			name:       "response without id",
			statusCode: http.StatusOK,
			body:       `{}`,
			wantErr:    true,
			errMsg:     "no message id",
		},
		{
			name:       "malformed response",
			statusCode: http.StatusOK,
			body:       `not json`,
			wantErr:    true,
			errMsg:     "parsing discord message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received discordWebhookPayload

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					assert.Equal(t, http.MethodPost, r.Method)
					assert.Equal(t, "/webhooks/1/token", r.URL.Path)
					assert.Equal(t, "true", r.URL.Query().Get("wait"))

					err := json.NewDecoder(r.Body).Decode(&received)
					assert.NoError(t, err)

					w.WriteHeader(tt.statusCode)
					_, _ = w.Write([]byte(tt.body))
				}),
			)
			defer srv.Close()

			payload := testPayload()
			d := NewDiscordNotifier(srv.URL + "/webhooks/1/token")
			id, err := d.Create(context.Background(), &payload)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			require.Len(t, received.Embeds, 1)

			embed := received.Embeds[0]
			assert.Equal(t, payload.Title, embed.Title)
			assert.Equal(t, payload.URL, embed.URL)
			assert.Equal(t, payload.Color, embed.Color)
			assert.Equal(t, "2024-05-01T12:00:00Z", embed.Timestamp)
			require.NotNil(t, embed.Thumbnail)
			assert.Equal(t, payload.ThumbnailURL, embed.Thumbnail.URL)
			require.NotNil(t, embed.Image)
			assert.Equal(t, payload.ImageURL, embed.Image.URL)

			fieldMap := make(map[string]string)
			for _, f := range embed.Fields {
				fieldMap[f.Name] = f.Value
			}
			assert.Equal(t, "0.0412", fieldMap["Float"])
			assert.Equal(t, "$1500.00", fieldMap["Price"])
		})
	}
}

func TestDiscordNotifier_Edit(t *testing.T) {
	t.Parallel()

	var (
		method   string
		path     string
		received discordWebhookPayload
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		err := json.NewDecoder(r.Body).Decode(&received)
		assert.NoError(t, err)
		_, _ = w.Write([]byte(`{"id":"1234567890"}`))
	}))
	defer srv.Close()

	payload := testPayload()
	payload.Title = "Karambit | Crimson Web Updated"

	d := NewDiscordNotifier(srv.URL + "/webhooks/1/token")
	err := d.Edit(context.Background(), "1234567890", &payload)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/webhooks/1/token/messages/1234567890", path)
	require.Len(t, received.Embeds, 1)
	assert.Equal(t, payload.Title, received.Embeds[0].Title)
}

func TestDiscordNotifier_Edit_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Unknown Message"}`))
	}))
	defer srv.Close()

	payload := testPayload()
	d := NewDiscordNotifier(srv.URL)
	err := d.Edit(context.Background(), "missing", &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord returned 404")
}

func TestDiscordNotifier_Create_NoImages(t *testing.T) {
	t.Parallel()

	var received discordWebhookPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&received)
		assert.NoError(t, err)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	payload := testPayload()
	payload.ThumbnailURL = ""
	payload.ImageURL = ""
	payload.Timestamp = time.Time{}

	d := NewDiscordNotifier(srv.URL)
	_, err := d.Create(context.Background(), &payload)
	require.NoError(t, err)

	require.Len(t, received.Embeds, 1)
	assert.Nil(t, received.Embeds[0].Thumbnail)
	assert.Nil(t, received.Embeds[0].Image)
	assert.Empty(t, received.Embeds[0].Timestamp)
}

func TestDiscordNotifier_NetworkError(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("http://127.0.0.1:1") // nothing listening
	payload := testPayload()
	_, err := d.Create(context.Background(), &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending discord webhook")
}

func TestDiscordNotifier_InvalidWebhookURL(t *testing.T) {
	t.Parallel()

	// Edge case: Discord webhook with malformed URL.
	d := NewDiscordNotifier("://not-a-valid-url")
	payload := testPayload()
	_, err := d.Create(context.Background(), &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating discord request")
}

func TestDiscordNotifier_HungWebhookTimesOut(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	d := NewDiscordNotifier(srv.URL, WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))
	payload := testPayload()

	start := time.Now()
	_, err := d.Create(context.Background(), &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending discord webhook")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	d := NewDiscordNotifier("https://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, d.client)
}

func getNotificationHistogramSampleCount() uint64 {
	ch := make(chan prometheus.Metric, 1)
	metrics.NotificationDuration.Collect(ch)
	m := <-ch
	pb := &dto.Metric{}
	_ = m.Write(pb)
	return pb.GetHistogram().GetSampleCount()
}

func TestCreate_ObservesNotificationDuration(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	before := getNotificationHistogramSampleCount()

	d := NewDiscordNotifier(srv.URL)
	_, err := d.Create(context.Background(), &ItemPayload{Title: "Test"})
	require.NoError(t, err)

	after := getNotificationHistogramSampleCount()
	assert.Greater(t, after, before, "NotificationDuration histogram sample count should increase")
}

// compile-time interface check.
var _ Notifier = (*DiscordNotifier)(nil)
