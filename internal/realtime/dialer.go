package realtime

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketDialer opens gorilla WebSocket transports against a base
// origin. Descriptor paths are resolved as URL references, so both
// relative paths ("/ws/orders") and absolute endpoints work.
type WebSocketDialer struct {
	base             *url.URL
	header           http.Header
	handshakeTimeout time.Duration
}

// DialerOption configures a WebSocketDialer.
type DialerOption func(*WebSocketDialer)

// WithHandshakeTimeout overrides the WebSocket handshake timeout.
func WithHandshakeTimeout(d time.Duration) DialerOption {
	return func(w *WebSocketDialer) {
		w.handshakeTimeout = d
	}
}

// WithAuthToken sets the bearer token sent on every dial.
func WithAuthToken(token string) DialerOption {
	return func(w *WebSocketDialer) {
		w.header.Set("Authorization", "Bearer "+token)
	}
}

// NewWebSocketDialer creates a dialer for the given base origin
// (e.g. "wss://gateway.amadeus.internal").
func NewWebSocketDialer(baseURL string, opts ...DialerOption) (*WebSocketDialer, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	d := &WebSocketDialer{
		base:             base,
		header:           http.Header{},
		handshakeTimeout: 10 * time.Second,
	}
	d.header.Set("Accept", "application/json")

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Dial opens a WebSocket connection to the path resolved against the
// base origin.
func (d *WebSocketDialer) Dial(ctx context.Context, path string) (Transport, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	target := d.base.ResolveReference(ref)

	dialer := websocket.Dialer{
		HandshakeTimeout: d.handshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, target.String(), d.header)
	if err != nil {
		return nil, err
	}

	return &wsTransport{conn: conn}, nil
}

// wsTransport adapts a gorilla connection to the Transport interface.
type wsTransport struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		// Best-effort close handshake before dropping the socket.
		t.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}
