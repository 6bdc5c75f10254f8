package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errFakeTimeout = errors.New("i/o timeout")

// fakeTransport is an in-memory Transport. Frames pushed to in are returned by
// ReadMessage; written frames are recorded and echoed on written.
type fakeTransport struct {
	in      chan []byte
	written chan []byte

	mu       sync.Mutex
	out      [][]byte
	deadline time.Time
	writeErr error

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:      make(chan []byte, 64),
		written: make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

func (f *fakeTransport) push(t *testing.T, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f.in <- data
}

func (f *fakeTransport) ReadMessage() ([]byte, error) {
	f.mu.Lock()
	deadline := f.deadline
	f.mu.Unlock()

	var timeout <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case data := <-f.in:
		return data, nil
	case <-f.closed:
		return nil, errors.New("use of closed network connection")
	case <-timeout:
		return nil, errFakeTimeout
	}
}

func (f *fakeTransport) WriteMessage(data []byte) error {
	select {
	case <-f.closed:
		return errors.New("use of closed network connection")
	default:
	}
	f.mu.Lock()
	err := f.writeErr
	if err == nil {
		f.out = append(f.out, append([]byte(nil), data...))
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}
	select {
	case f.written <- data:
	default:
	}
	return nil
}

func (f *fakeTransport) SetReadDeadline(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadline = t
	return nil
}

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) frames(t *testing.T) []Frame {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	frames := make([]Frame, 0, len(f.out))
	for _, data := range f.out {
		var fr Frame
		require.NoError(t, json.Unmarshal(data, &fr))
		frames = append(frames, fr)
	}
	return frames
}

type fakeDialer struct {
	transport Transport
	err       error
	url       string
}

func (d *fakeDialer) Dial(_ context.Context, url string) (Transport, error) {
	d.url = url
	if d.err != nil {
		return nil, d.err
	}
	return d.transport, nil
}

func seq(n int64) *int64 { return &n }

// identifiedConn returns a Conn that has completed the handshake against a fake transport.
func identifiedConn(t *testing.T) (*Conn, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	c := NewConn(ConnConfig{
		URL:              "wss://gateway.test",
		Token:            "tok",
		Capabilities:     16381,
		Properties:       DefaultClientProperties(),
		HandshakeTimeout: time.Second,
		Dialer:           &fakeDialer{transport: ft},
	})
	ft.push(t, map[string]any{"op": OpHello, "d": map[string]any{"heartbeat_interval": 41250}})

	ctx := context.Background()
	require.NoError(t, c.Open(ctx))
	_, err := c.Handshake(ctx)
	require.NoError(t, err)
	<-ft.written // identify
	return c, ft
}
