package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vanpelt/headcord/internal/logger"
)

// State is the lifecycle position of a Conn.
type State int

const (
	StateDisconnected State = iota
	StateHandshaking
	StateIdentified
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateHandshaking:
		return "handshaking"
	case StateIdentified:
		return "identified"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ConnConfig configures a Conn.
type ConnConfig struct {
	URL              string
	Token            string
	Capabilities     int
	Properties       ClientProperties
	HandshakeTimeout time.Duration
	Dialer           Dialer
}

// Conn owns the gateway transport. It performs the handshake, tracks the last
// sequence number and serializes writes. Receive must be called from a single
// goroutine; Send, SendHeartbeat and Close are safe from any goroutine.
type Conn struct {
	cfg ConnConfig
	log zerolog.Logger

	writeMu sync.Mutex

	mu        sync.Mutex
	state     State
	transport Transport
	seq       *int64
	interval  time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

// NewConn returns a Conn in the Disconnected state.
func NewConn(cfg ConnConfig) *Conn {
	if cfg.Dialer == nil {
		cfg.Dialer = NewWebsocketDialer(cfg.HandshakeTimeout)
	}
	return &Conn{
		cfg:    cfg,
		log:    logger.Component("gateway"),
		closed: make(chan struct{}),
	}
}

// Open dials the gateway and moves the connection to Handshaking.
func (c *Conn) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		state := c.state
		c.mu.Unlock()
		if state == StateClosed {
			return ErrClosed
		}
		return fmt.Errorf("gateway: open called in state %s", state)
	}
	c.state = StateHandshaking
	c.mu.Unlock()

	c.log.Info().Str("url", c.cfg.URL).Msg("dialing gateway")
	transport, err := c.cfg.Dialer.Dial(ctx, c.cfg.URL)
	if err != nil {
		c.Close()
		if cerr := canceled(ctx); cerr != nil {
			return cerr
		}
		return &TransportError{Op: "dial", Err: err}
	}

	c.mu.Lock()
	c.transport = transport
	c.mu.Unlock()

	select {
	case <-c.closed:
		// Closed while dialing.
		_ = transport.Close()
		return ErrClosed
	default:
	}
	return nil
}

// Handshake reads the hello frame, records the heartbeat interval and sends
// identify. The hello frame is returned so the caller can route it.
func (c *Conn) Handshake(ctx context.Context) (Frame, error) {
	if state := c.State(); state != StateHandshaking {
		if state == StateClosed {
			return Frame{}, ErrClosed
		}
		return Frame{}, fmt.Errorf("gateway: handshake called in state %s", state)
	}
	transport := c.currentTransport()

	var deadline time.Time
	if c.cfg.HandshakeTimeout > 0 {
		deadline = time.Now().Add(c.cfg.HandshakeTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if !deadline.IsZero() {
		if err := transport.SetReadDeadline(deadline); err != nil {
			c.Close()
			return Frame{}, &HandshakeError{Reason: "set read deadline", Err: &TransportError{Op: "read", Err: err}}
		}
	}

	// Cancelling ctx closes the connection, which unblocks the read below.
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	hello, err := c.readFrame()
	if err != nil {
		c.Close()
		if cerr := canceled(ctx); cerr != nil {
			return Frame{}, cerr
		}
		var proto *ProtocolError
		if errors.As(err, &proto) {
			return Frame{}, &HandshakeError{Reason: "malformed hello", Err: err}
		}
		return Frame{}, &HandshakeError{Reason: "waiting for hello", Err: err}
	}
	if hello.Op != OpHello {
		c.Close()
		return Frame{}, &HandshakeError{Reason: fmt.Sprintf("expected hello (op %d), got op %d", OpHello, hello.Op)}
	}
	var payload Hello
	if err := hello.DecodePayload(&payload); err != nil {
		c.Close()
		return Frame{}, &HandshakeError{Reason: "decode hello", Err: err}
	}
	if payload.HeartbeatInterval <= 0 {
		c.Close()
		return Frame{}, &HandshakeError{Reason: fmt.Sprintf("invalid heartbeat interval %d", payload.HeartbeatInterval)}
	}

	if err := transport.SetReadDeadline(time.Time{}); err != nil {
		c.Close()
		return Frame{}, &HandshakeError{Reason: "clear read deadline", Err: &TransportError{Op: "read", Err: err}}
	}

	c.mu.Lock()
	c.interval = time.Duration(payload.HeartbeatInterval) * time.Millisecond
	c.mu.Unlock()

	identify, err := NewFrame(OpIdentify, Identify{
		Token:        c.cfg.Token,
		Capabilities: c.cfg.Capabilities,
		Properties:   c.cfg.Properties,
	})
	if err != nil {
		c.Close()
		return Frame{}, &HandshakeError{Reason: "encode identify", Err: err}
	}
	if err := c.Send(ctx, identify); err != nil {
		c.Close()
		if cerr := canceled(ctx); cerr != nil {
			return Frame{}, cerr
		}
		return Frame{}, &HandshakeError{Reason: "send identify", Err: err}
	}

	c.mu.Lock()
	if c.state == StateHandshaking {
		c.state = StateIdentified
	}
	c.mu.Unlock()

	c.log.Info().Int64("heartbeat_interval_ms", payload.HeartbeatInterval).Msg("identified")
	return hello, nil
}

// Send encodes and writes one frame.
func (c *Conn) Send(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	transport, err := c.writableTransport()
	if err != nil {
		return err
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame %s: %w", f, err)
	}

	c.writeMu.Lock()
	err = transport.WriteMessage(data)
	c.writeMu.Unlock()
	if err != nil {
		if c.isClosed() {
			return ErrClosed
		}
		c.Close()
		return &TransportError{Op: "write", Err: err}
	}
	c.log.Debug().Stringer("frame", f).Msg("sent")
	return nil
}

// SendHeartbeat sends {op:1, d:<last sequence or null>}.
func (c *Conn) SendHeartbeat(ctx context.Context) error {
	f, err := NewFrame(OpHeartbeat, c.Sequence())
	if err != nil {
		return err
	}
	return c.Send(ctx, f)
}

// Receive blocks until a frame arrives or the transport fails. Closing the Conn
// unblocks a pending Receive with ErrClosed. A frame that is not valid JSON
// yields a ProtocolError and leaves the connection usable.
func (c *Conn) Receive(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if c.isClosed() {
		return Frame{}, ErrClosed
	}
	f, err := c.readFrame()
	if err != nil {
		var proto *ProtocolError
		if !errors.As(err, &proto) {
			c.Close()
		}
		return Frame{}, err
	}

	c.mu.Lock()
	if f.S != nil && (c.seq == nil || *f.S > *c.seq) {
		s := *f.S
		c.seq = &s
	}
	if c.state == StateIdentified {
		c.state = StateActive
	}
	c.mu.Unlock()

	c.log.Debug().Stringer("frame", f).Msg("received")
	return f, nil
}

func (c *Conn) readFrame() (Frame, error) {
	transport := c.currentTransport()
	if transport == nil {
		return Frame{}, ErrClosed
	}
	data, err := transport.ReadMessage()
	if err != nil {
		if c.isClosed() {
			return Frame{}, ErrClosed
		}
		return Frame{}, &TransportError{Op: "read", Err: err}
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, &ProtocolError{Reason: "invalid frame json", Err: err}
	}
	return f, nil
}

// Sequence returns the highest sequence number seen, or nil before the first dispatch.
func (c *Conn) Sequence() *int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq == nil {
		return nil
	}
	s := *c.seq
	return &s
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HeartbeatInterval is zero until the handshake has completed.
func (c *Conn) HeartbeatInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Done is closed once the connection reaches the Closed state.
func (c *Conn) Done() <-chan struct{} {
	return c.closed
}

// Close sends a normal closure and releases the transport. Safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		transport := c.transport
		c.mu.Unlock()
		close(c.closed)

		if transport != nil {
			err = transport.Close()
		}
		c.log.Info().Msg("connection closed")
	})
	return err
}

// canceled returns ctx's error when the caller gave up. A passed deadline is
// not reported here; it surfaces as a handshake timeout instead.
func canceled(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return nil
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Conn) currentTransport() Transport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport
}

func (c *Conn) writableTransport() (Transport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return nil, ErrClosed
	}
	if c.transport == nil {
		return nil, fmt.Errorf("gateway: send in state %s", c.state)
	}
	return c.transport, nil
}
