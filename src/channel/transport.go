package channel

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"dashboard-sync/src/interfaces"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Websocket transport. One dialer is shared by every channel; it carries the
// API key and handshake timeout so channels stay credential-free.
// -----------------------------------------------------------------------------

const writeWait = 5 * time.Second

type WebSocketDialer struct {
	apiKey           string
	handshakeTimeout time.Duration
}

// -----------------------------------------------------------------------------

func NewWebSocketDialer(apiKey string, handshakeTimeout time.Duration) *WebSocketDialer {
	return &WebSocketDialer{
		apiKey:           apiKey,
		handshakeTimeout: handshakeTimeout,
	}
}

// -----------------------------------------------------------------------------

// Dial opens a websocket to the endpoint. Protocol-level pings and pongs
// are answered transparently and reported through opts.OnControl so the
// caller can count them as liveness.
func (d *WebSocketDialer) Dial(endpoint string, opts interfaces.MDialOptions) (interfaces.ITransport, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.handshakeTimeout}

	header := http.Header{}
	for k, vs := range opts.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	if d.apiKey != "" {
		header.Set("X-API-Key", d.apiKey)
	}

	conn, _, err := dialer.Dial(endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	if opts.OnControl != nil {
		conn.SetPingHandler(func(appData string) error {
			opts.OnControl()
			return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		})
		conn.SetPongHandler(func(string) error {
			opts.OnControl()
			return nil
		})
	}

	return &wsTransport{conn: conn}, nil
}

// -----------------------------------------------------------------------------

// MakeSocketURL converts the HTTP base URL plus a path into a websocket URL.
func MakeSocketURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q in base URL", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}

// -----------------------------------------------------------------------------

type wsTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// ReadMessage blocks until a data frame arrives. Control frames are
// consumed by the gorilla handlers and never surface here.
func (t *wsTransport) ReadMessage() ([]byte, error) {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (t *wsTransport) WriteMessage(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}
