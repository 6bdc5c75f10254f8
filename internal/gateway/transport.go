package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is a message-oriented, full-duplex channel to the gateway. Reads and
// writes may happen concurrently; concurrent writes are serialized by Conn.
// Close must be safe to call while a read or write is in flight.
type Transport interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	SetReadDeadline(t time.Time) error
	Close() error
}

// Dialer opens a Transport to a gateway URL.
type Dialer interface {
	Dial(ctx context.Context, url string) (Transport, error)
}

// WebsocketDialer dials the gateway over gorilla/websocket.
type WebsocketDialer struct {
	Dialer *websocket.Dialer
}

// NewWebsocketDialer returns a dialer based on websocket.DefaultDialer.
func NewWebsocketDialer(handshakeTimeout time.Duration) *WebsocketDialer {
	d := *websocket.DefaultDialer
	if handshakeTimeout > 0 {
		d.HandshakeTimeout = handshakeTimeout
	}
	return &WebsocketDialer{Dialer: &d}
}

func (d *WebsocketDialer) Dial(ctx context.Context, url string) (Transport, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %s)", url, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &websocketTransport{conn: conn}, nil
}

type websocketTransport struct {
	conn *websocket.Conn
}

func (t *websocketTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *websocketTransport) WriteMessage(data []byte) error {
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *websocketTransport) SetReadDeadline(deadline time.Time) error {
	return t.conn.SetReadDeadline(deadline)
}

// Close sends a normal-closure control frame, best effort, then drops the socket.
func (t *websocketTransport) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return t.conn.Close()
}
