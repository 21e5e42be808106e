package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/donaldgifford/empire-watcher/internal/metrics"
)

// DiscordNotifier implements Notifier via Discord webhook. Messages are
// created with ?wait=true so Discord returns the message id, which is the
// handle used for later edits.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Thumbnail   *discordImage       `json:"thumbnail,omitempty"`
	Image       *discordImage       `json:"image,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordImage struct {
	URL string `json:"url"`
}

type discordMessage struct {
	ID string `json:"id"`
}

// Create posts a new message and returns its id.
func (d *DiscordNotifier) Create(ctx context.Context, payload *ItemPayload) (string, error) {
	u, err := url.Parse(d.webhookURL)
	if err != nil {
		return "", fmt.Errorf("creating discord request: %w", err)
	}
	q := u.Query()
	q.Set("wait", "true")
	u.RawQuery = q.Encode()

	body, err := d.send(ctx, http.MethodPost, u.String(), payload)
	if err != nil {
		return "", err
	}

	var msg discordMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", fmt.Errorf("parsing discord message: %w", err)
	}
	if msg.ID == "" {
		return "", fmt.Errorf("discord response carried no message id")
	}

	metrics.NotificationsSentTotal.WithLabelValues("create").Inc()
	return msg.ID, nil
}

// Edit replaces the content of a previously created message.
func (d *DiscordNotifier) Edit(ctx context.Context, handle string, payload *ItemPayload) error {
	u, err := url.Parse(d.webhookURL)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	u = u.JoinPath("messages", handle)

	if _, err := d.send(ctx, http.MethodPatch, u.String(), payload); err != nil {
		return err
	}

	metrics.NotificationsSentTotal.WithLabelValues("edit").Inc()
	return nil
}

func buildEmbed(p *ItemPayload) discordEmbed {
	embed := discordEmbed{
		Title:       p.Title,
		URL:         p.URL,
		Color:       p.Color,
		Description: p.Description,
	}

	for _, f := range p.Fields {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	if p.ThumbnailURL != "" {
		embed.Thumbnail = &discordImage{URL: p.ThumbnailURL}
	}
	if p.ImageURL != "" {
		embed.Image = &discordImage{URL: p.ImageURL}
	}
	if !p.Timestamp.IsZero() {
		embed.Timestamp = p.Timestamp.UTC().Format(time.RFC3339)
	}

	return embed
}

func (d *DiscordNotifier) send(
	ctx context.Context,
	method, target string,
	payload *ItemPayload,
) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(discordWebhookPayload{Embeds: []discordEmbed{buildEmbed(payload)}})
	if err != nil {
		return nil, fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if readErr != nil {
			return nil, fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return nil, fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}
	if readErr != nil {
		return nil, fmt.Errorf("reading discord response: %w", readErr)
	}

	return respBody, nil
}
