// Package main implements a mock CSGOEmpire server for local development.
// It serves the trading items and socket metadata endpoints from a JSON
// fixture and runs a minimal trade socket that pushes fixture items, so the
// watcher can run end to end without a real API key.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const (
	namespace        = "/trade"
	mockUserID       = 1234567
	mockPingInterval = 25 * time.Second
)

type itemsResponse struct {
	Data []json.RawMessage `json:"data"`
}

type fixtureItem struct {
	raw         json.RawMessage
	name        string
	marketValue int64
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/items.json", "path to trading items fixture")
	pushEvery := flag.Duration("push-interval", 15*time.Second, "how often the trade socket pushes an item update")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "items", len(fixture))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock empire server", "addr", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           requestLogger(logger, newMux(logger, fixture, *pushEvery)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, fixture []fixtureItem, pushEvery time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/metadata/socket", metadataHandler(logger))
	mux.HandleFunc("GET /api/v2/trading/items", itemsHandler(logger, fixture))
	mux.HandleFunc("GET /s/", socketHandler(logger, fixture, pushEvery))
	return mux
}

func loadFixture(path string) ([]fixtureItem, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var resp itemsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	items := make([]fixtureItem, 0, len(resp.Data))
	for _, raw := range resp.Data {
		items = append(items, fixtureItem{
			raw:         raw,
			name:        strings.ToLower(gjson.GetBytes(raw, "market_name").String()),
			marketValue: gjson.GetBytes(raw, "market_value").Int(),
		})
	}
	return items, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func authorized(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") &&
		len(r.Header.Get("Authorization")) > len("Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func metadataHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			logger.Warn("metadata request missing bearer token")
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthenticated."})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"user": map[string]any{
				"id":         mockUserID,
				"steam_name": "mock-user",
			},
			"socket_token":     "mock-socket-token-" + strconv.FormatInt(time.Now().Unix(), 16),
			"socket_signature": "mock-signature",
		})
		logger.Info("issued mock socket credentials")
	}
}

func itemsHandler(logger *slog.Logger, fixture []fixtureItem) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthenticated."})
			return
		}

		q := r.URL.Query()
		search := strings.ToLower(q.Get("search"))
		priceMin, hasMin := queryInt(q.Get("price_min"))
		priceMax, hasMax := queryInt(q.Get("price_max"))

		perPage := 100
		if v, ok := queryInt(q.Get("per_page")); ok && v > 0 {
			perPage = int(v)
		}
		page := 1
		if v, ok := queryInt(q.Get("page")); ok && v > 0 {
			page = int(v)
		}

		var matched []fixtureItem
		for _, it := range fixture {
			if search != "" && !strings.Contains(it.name, search) {
				continue
			}
			if hasMin && it.marketValue < priceMin {
				continue
			}
			if hasMax && it.marketValue > priceMax {
				continue
			}
			matched = append(matched, it)
		}

		if q.Get("order") == "market_value" {
			desc := q.Get("sort") != "asc"
			slices.SortStableFunc(matched, func(a, b fixtureItem) int {
				if desc {
					return int(b.marketValue - a.marketValue)
				}
				return int(a.marketValue - b.marketValue)
			})
		}

		total := len(matched)
		start := min((page-1)*perPage, total)
		end := min(start+perPage, total)

		resp := itemsResponse{Data: make([]json.RawMessage, 0, end-start)}
		for _, it := range matched[start:end] {
			resp.Data = append(resp.Data, it.raw)
		}

		writeJSON(w, http.StatusOK, resp)
		logger.Info("search", "query", search, "matched", total, "returned", len(resp.Data), "page", page)
	}
}

func queryInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// socketHandler speaks just enough Engine.IO v4 / Socket.IO to walk a
// client through open, namespace connect, identify and init, then pushes a
// fixture item with a nudged price every pushEvery.
func socketHandler(logger *slog.Logger, fixture []fixtureItem, pushEvery time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		var writeMu sync.Mutex
		send := func(msg string) error {
			writeMu.Lock()
			defer writeMu.Unlock()
			return conn.WriteMessage(websocket.TextMessage, []byte(msg))
		}

		open := fmt.Sprintf(`0{"sid":"mock","upgrades":[],"pingInterval":%d,"pingTimeout":20000}`,
			mockPingInterval.Milliseconds())
		if err := send(open); err != nil {
			return
		}

		done := make(chan struct{})
		defer close(done)
		go heartbeat(mockPingInterval, send, done)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msg := string(data)

			switch {
			case msg == "2":
				_ = send("3")
			case msg == "40"+namespace+",":
				_ = send("40" + namespace + `,{"sid":"mock-trade"}`)
			case strings.HasPrefix(msg, "42"+namespace+`,["identify"`):
				logger.Info("client identified", "uid", r.URL.Query().Get("uid"))
				_ = send("42" + namespace + `,["init",{"authenticated":true,"serverTime":` +
					strconv.FormatInt(time.Now().UnixMilli(), 10) + `}]`)
			case strings.HasPrefix(msg, "42"+namespace+`,["filters"`):
				go pushItems(logger, fixture, pushEvery, send, done)
			}
		}
	}
}

// heartbeat pings the client on the interval announced in the open packet.
func heartbeat(every time.Duration, send func(string) error, done <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}
		if err := send("2"); err != nil {
			return
		}
	}
}

func pushItems(
	logger *slog.Logger,
	fixture []fixtureItem,
	every time.Duration,
	send func(string) error,
	done <-chan struct{},
) {
	if len(fixture) == 0 || every <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		it := fixture[n%len(fixture)]
		price := it.marketValue + int64(n+1)*100

		msg, err := itemEvent("updated_item", it.raw, price)
		if err != nil {
			logger.Warn("building item event", "error", err)
			continue
		}
		if err := send(msg); err != nil {
			return
		}
		logger.Info("pushed item update", "name", it.name, "market_value", price)
	}
}

// itemEvent encodes a Socket.IO event carrying one item with its market
// value replaced.
func itemEvent(event string, raw json.RawMessage, marketValue int64) (string, error) {
	var item map[string]any
	if err := json.Unmarshal(raw, &item); err != nil {
		return "", fmt.Errorf("decoding fixture item: %w", err)
	}
	item["market_value"] = marketValue

	payload, err := json.Marshal([]any{event, []any{item}})
	if err != nil {
		return "", fmt.Errorf("encoding event: %w", err)
	}
	return "42" + namespace + "," + string(payload), nil
}
