package empire

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Engine.IO packet types.
const (
	engineOpen    = '0'
	engineClose   = '1'
	enginePing    = '2'
	enginePong    = '3'
	engineMessage = '4'
	engineNoop    = '6'
)

// Socket.IO packet types, carried inside an Engine.IO message.
const (
	socketConnect      = '0'
	socketDisconnect   = '1'
	socketEvent        = '2'
	socketConnectError = '4'
)

// frame is one decoded text frame of the trade socket.
type frame struct {
	engineType byte
	socketType byte
	namespace  string
	data       string
}

// parseFrame decodes an Engine.IO text frame and, for message frames, the
// Socket.IO packet header it carries.
func parseFrame(msg []byte) (frame, error) {
	s := string(msg)
	if s == "" {
		return frame{}, fmt.Errorf("%w: empty frame", ErrProtocol)
	}

	f := frame{engineType: s[0], namespace: "/"}
	if f.engineType != engineMessage {
		f.data = s[1:]
		return f, nil
	}

	if len(s) < 2 {
		return frame{}, fmt.Errorf("%w: message frame without packet type", ErrProtocol)
	}
	f.socketType = s[1]
	rest := s[2:]

	if strings.HasPrefix(rest, "/") {
		ns, data, found := strings.Cut(rest, ",")
		f.namespace = ns
		rest = ""
		if found {
			rest = data
		}
	}

	// Skip an optional ack id.
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	f.data = rest[i:]

	return f, nil
}

// event returns the name and arguments of an EVENT packet.
func (f frame) event() (string, []gjson.Result, error) {
	if f.engineType != engineMessage || f.socketType != socketEvent {
		return "", nil, fmt.Errorf("%w: not an event packet", ErrProtocol)
	}
	if !gjson.Valid(f.data) {
		return "", nil, fmt.Errorf("%w: invalid event JSON", ErrProtocol)
	}

	parsed := gjson.Parse(f.data)
	if !parsed.IsArray() {
		return "", nil, fmt.Errorf("%w: event payload is not an array", ErrProtocol)
	}

	parts := parsed.Array()
	if len(parts) == 0 || parts[0].Type != gjson.String {
		return "", nil, fmt.Errorf("%w: event without a name", ErrProtocol)
	}

	return parts[0].String(), parts[1:], nil
}

// heartbeatTimeout reads pingInterval and pingTimeout (milliseconds) from an
// open packet. The server pings every interval and expects a pong within the
// timeout, so a connection silent for their sum is dead.
func heartbeatTimeout(open string) (time.Duration, bool) {
	interval := gjson.Get(open, "pingInterval").Int()
	timeout := gjson.Get(open, "pingTimeout").Int()
	if interval <= 0 || timeout <= 0 {
		return 0, false
	}
	return time.Duration(interval+timeout) * time.Millisecond, true
}

// encodeConnect builds the Socket.IO CONNECT packet for a namespace.
func encodeConnect(namespace string) []byte {
	return []byte(string(engineMessage) + string(socketConnect) + namespacePrefix(namespace))
}

// encodeEvent builds a Socket.IO EVENT packet.
func encodeEvent(namespace, name string, payload any) ([]byte, error) {
	body, err := json.Marshal([]any{name, payload})
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", name, err)
	}
	return append([]byte(string(engineMessage)+string(socketEvent)+namespacePrefix(namespace)), body...), nil
}

func namespacePrefix(namespace string) string {
	if namespace == "" || namespace == "/" {
		return ""
	}
	return namespace + ","
}
