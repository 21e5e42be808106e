package empire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/donaldgifford/empire-watcher/internal/metrics"
	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

const (
	defaultReconnectDelay = 10 * time.Second
	defaultPriceFilterMax = 9999999
	writeTimeout          = 10 * time.Second

	// defaultReadTimeout bounds reads until the open packet announces the
	// server's heartbeat, and is used if the packet omits it.
	defaultReadTimeout = 45 * time.Second
	itemQueueSize      = 256
)

// State is the lifecycle state of a push-stream session.
type State int32

// Session states, in the order a healthy session walks through them.
const (
	StateDisconnected State = iota
	StateRefreshingCredentials
	StateConnecting
	StateConnected
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateRefreshingCredentials:
		return "refreshing_credentials"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ItemHandler receives every complete item pushed by the stream.
type ItemHandler func(ctx context.Context, item domain.CatalogItem)

// StreamClient maintains a session against the trade socket and hands every
// pushed item to its ItemHandler. Sessions that fail for any transport
// reason are re-established after a fixed delay, forever, until the context
// passed to Run is cancelled.
type StreamClient struct {
	creds          CredentialProvider
	onItem         ItemHandler
	socketURL      string
	namespace      string
	reconnectDelay time.Duration
	priceMax       int64
	dialer         *websocket.Dialer
	log            *slog.Logger

	state   atomic.Int32
	writeMu sync.Mutex
}

// StreamOption configures the StreamClient.
type StreamOption func(*StreamClient)

// WithSocketURL overrides the trade socket URL.
func WithSocketURL(u string) StreamOption {
	return func(c *StreamClient) {
		c.socketURL = u
	}
}

// WithNamespace overrides the Socket.IO namespace.
func WithNamespace(ns string) StreamOption {
	return func(c *StreamClient) {
		c.namespace = ns
	}
}

// WithReconnectDelay sets the fixed delay between sessions.
func WithReconnectDelay(d time.Duration) StreamOption {
	return func(c *StreamClient) {
		c.reconnectDelay = d
	}
}

// WithStreamLogger sets a custom logger.
func WithStreamLogger(l *slog.Logger) StreamOption {
	return func(c *StreamClient) {
		c.log = l
	}
}

// WithDialer overrides the websocket dialer.
func WithDialer(d *websocket.Dialer) StreamOption {
	return func(c *StreamClient) {
		c.dialer = d
	}
}

// WithPriceFilter sets the price_max filter sent after authentication, in
// native minor units.
func WithPriceFilter(maxNative int64) StreamOption {
	return func(c *StreamClient) {
		c.priceMax = maxNative
	}
}

// NewStreamClient creates a push-stream client.
func NewStreamClient(creds CredentialProvider, onItem ItemHandler, opts ...StreamOption) *StreamClient {
	c := &StreamClient{
		creds:          creds,
		onItem:         onItem,
		socketURL:      DefaultSocketURL,
		namespace:      DefaultSocketNamespace,
		reconnectDelay: defaultReconnectDelay,
		priceMax:       defaultPriceFilterMax,
		dialer:         &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:            slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current session state.
func (c *StreamClient) State() State {
	return State(c.state.Load())
}

func (c *StreamClient) setState(s State) {
	if State(c.state.Swap(int32(s))) != s {
		metrics.StreamState.Set(float64(s))
		c.log.Debug("stream state changed", "state", s.String())
	}
}

// Run keeps a session alive until ctx is cancelled. It returns nil on
// cancellation; it never gives up on its own.
func (c *StreamClient) Run(ctx context.Context) error {
	for {
		err := c.session(ctx)
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			c.log.Info("stream stopped")
			return nil
		}

		c.log.Warn("stream session ended, reconnecting",
			"error", err,
			"retry_in", c.reconnectDelay,
		)
		metrics.StreamReconnectsTotal.Inc()

		if sleepContext(ctx, c.reconnectDelay) != nil {
			c.log.Info("stream stopped")
			return nil
		}
	}
}

func (c *StreamClient) session(ctx context.Context) error {
	c.setState(StateRefreshingCredentials)
	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("refreshing credentials: %w", err)
	}

	c.setState(StateConnecting)
	conn, err := c.dial(ctx, creds)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage when the watcher shuts down.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	// Items are handed off so a slow handler never delays ping replies.
	items := make(chan domain.CatalogItem, itemQueueSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for item := range items {
			c.onItem(ctx, item)
		}
	}()
	defer wg.Wait()
	defer close(items)

	s := &streamSession{conn: conn, creds: creds, items: items, readTimeout: defaultReadTimeout}
	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}
		if err := c.handleFrame(ctx, s, msg); err != nil {
			return err
		}
	}
}

// streamSession is the per-connection state of one session.
type streamSession struct {
	conn  *websocket.Conn
	creds *SocketCredentials
	items chan<- domain.CatalogItem
	// readTimeout is how long the server may stay silent before the
	// session is considered dead.
	readTimeout time.Duration
}

func (c *StreamClient) dial(ctx context.Context, creds *SocketCredentials) (*websocket.Conn, error) {
	u, err := url.Parse(c.socketURL)
	if err != nil {
		return nil, fmt.Errorf("parsing socket URL: %w", err)
	}
	q := u.Query()
	q.Set("uid", strconv.FormatInt(creds.UserID, 10))
	q.Set("token", creds.Token)
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("User-Agent", fmt.Sprintf("%d API Bot", creds.UserID))

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	return conn, nil
}

// handleFrame processes one frame. A returned error ends the session.
func (c *StreamClient) handleFrame(ctx context.Context, s *streamSession, msg []byte) error {
	f, err := parseFrame(msg)
	if err != nil {
		c.log.Warn("dropping malformed frame", "error", err)
		return nil
	}

	switch f.engineType {
	case engineOpen:
		if d, ok := heartbeatTimeout(f.data); ok {
			s.readTimeout = d
		}
		return c.write(s.conn, encodeConnect(c.namespace))
	case enginePing:
		return c.write(s.conn, []byte{enginePong})
	case engineClose:
		return errors.New("server closed the engine session")
	case engineMessage:
		return c.handlePacket(ctx, s, f)
	default:
		return nil
	}
}

func (c *StreamClient) handlePacket(ctx context.Context, s *streamSession, f frame) error {
	if f.namespace != c.namespace {
		return nil
	}

	switch f.socketType {
	case socketConnect:
		c.setState(StateConnected)
		c.log.Info("connected to trade socket")
		return c.emit(s.conn, "identify", identifyPayload{
			UID:                s.creds.UserID,
			Model:              s.creds.User,
			AuthorizationToken: s.creds.Token,
			Signature:          s.creds.Signature,
		})
	case socketConnectError:
		return fmt.Errorf("namespace connect rejected: %s", f.data)
	case socketDisconnect:
		return errors.New("server disconnected the namespace")
	case socketEvent:
		return c.handleEvent(ctx, s, f)
	default:
		return nil
	}
}

func (c *StreamClient) handleEvent(ctx context.Context, s *streamSession, f frame) error {
	name, args, err := f.event()
	if err != nil {
		c.log.Warn("dropping malformed event", "error", err)
		return nil
	}
	metrics.StreamEventsTotal.WithLabelValues(name).Inc()

	switch name {
	case "init":
		if len(args) == 0 || !args[0].Get("authenticated").Bool() {
			c.log.Warn("trade socket session is not authenticated")
			return nil
		}
		c.setState(StateAuthenticated)
		c.log.Info("authenticated on trade socket", "name", args[0].Get("name").String())
		return c.emit(s.conn, "filters", map[string]int64{"price_max": c.priceMax})
	case "new_item", "updated_item":
		return c.dispatchItems(ctx, s, name, args)
	case "error":
		c.log.Error("trade socket error", "error", joinArgs(args))
	default:
		c.log.Debug("ignoring event", "event", name)
	}
	return nil
}

func (c *StreamClient) dispatchItems(
	ctx context.Context,
	s *streamSession,
	event string,
	args []gjson.Result,
) error {
	items, skipped, err := decodeItems(args)
	if err != nil {
		c.log.Warn("dropping undecodable items", "event", event, "error", err)
	}
	if skipped > 0 {
		c.log.Debug("skipping partial item updates", "event", event, "count", skipped)
	}

	for i := range items {
		item := ToCatalogItem(&items[i])
		c.log.Debug("item pushed",
			"event", event,
			"id", item.ID,
			"name", item.MarketName,
			"price", domain.FormatPrice(item.MarketValue),
		)
		select {
		case s.items <- item:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

type identifyPayload struct {
	UID                int64           `json:"uid"`
	Model              json.RawMessage `json:"model,omitempty"`
	AuthorizationToken string          `json:"authorizationToken"`
	Signature          string          `json:"signature"`
}

func (c *StreamClient) emit(conn *websocket.Conn, event string, payload any) error {
	msg, err := encodeEvent(c.namespace, event, payload)
	if err != nil {
		return err
	}
	return c.write(conn, msg)
}

func (c *StreamClient) write(conn *websocket.Conn, msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func joinArgs(args []gjson.Result) string {
	raw := make([]string, 0, len(args))
	for _, a := range args {
		raw = append(raw, a.Raw)
	}
	return fmt.Sprint(raw)
}
