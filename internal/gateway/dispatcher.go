package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vanpelt/headcord/internal/logger"
)

// HandlerFunc processes one dispatch frame. Returning a TransportError or
// ErrClosed ends the session; any other error is logged and the frame is
// written to the sink.
type HandlerFunc func(ctx context.Context, f Frame) error

// Receiver is the part of Conn the dispatcher reads from.
type Receiver interface {
	Receive(ctx context.Context) (Frame, error)
}

// Sink receives every frame the dispatcher does not consume.
type Sink interface {
	Write(v any) error
}

type nopSink struct{}

func (nopSink) Write(any) error { return nil }

// Dispatcher is the single consumer of inbound frames. Frames are handled one
// at a time in arrival order.
type Dispatcher struct {
	conn      Receiver
	heartbeat *Heartbeat
	sink      Sink
	handlers  map[string]HandlerFunc
	log       zerolog.Logger
}

// NewDispatcher creates a dispatcher. A nil sink discards unhandled frames.
func NewDispatcher(conn Receiver, heartbeat *Heartbeat, sink Sink) *Dispatcher {
	if sink == nil {
		sink = nopSink{}
	}
	return &Dispatcher{
		conn:      conn,
		heartbeat: heartbeat,
		sink:      sink,
		handlers:  make(map[string]HandlerFunc),
		log:       logger.Component("dispatcher"),
	}
}

// Handle registers h for dispatch frames of the given event type, replacing
// any previous handler. Register handlers before Run.
func (d *Dispatcher) Handle(eventType string, h HandlerFunc) {
	d.handlers[eventType] = h
}

// Run consumes frames until the connection closes or a fatal error occurs.
// A connection closed locally ends Run without error.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		f, err := d.conn.Receive(ctx)
		if err != nil {
			var proto *ProtocolError
			switch {
			case errors.As(err, &proto):
				d.log.Warn().Err(err).Msg("dropping unreadable frame")
				continue
			case errors.Is(err, ErrClosed), errors.Is(err, context.Canceled):
				return nil
			default:
				return err
			}
		}
		if err := d.Dispatch(ctx, f); err != nil {
			return err
		}
	}
}

// Dispatch routes a single frame. Only fatal errors are returned.
func (d *Dispatcher) Dispatch(ctx context.Context, f Frame) error {
	switch f.Op {
	case OpHello:
		var hello Hello
		if err := f.DecodePayload(&hello); err != nil {
			d.protocolError(&ProtocolError{Frame: f, Reason: "decode hello", Err: err})
			return nil
		}
		interval := time.Duration(hello.HeartbeatInterval) * time.Millisecond
		if interval <= 0 {
			d.protocolError(&ProtocolError{Frame: f, Reason: "invalid heartbeat interval"})
			return nil
		}
		if !d.heartbeat.SetInterval(interval) {
			d.protocolError(&ProtocolError{Frame: f, Reason: "hello after heartbeat interval was set"})
		}
		return nil

	case OpHeartbeat:
		return d.heartbeat.Trigger(ctx)

	case OpHeartbeatAck:
		d.log.Debug().Msg("heartbeat acknowledged")
		return nil

	case OpDispatch:
		h, ok := d.handlers[f.T]
		if !ok {
			d.unhandled(f)
			return nil
		}
		err := h(ctx, f)
		if err == nil {
			return nil
		}
		var transportErr *TransportError
		if errors.As(err, &transportErr) || errors.Is(err, ErrClosed) {
			return err
		}
		d.protocolError(&ProtocolError{Frame: f, Reason: "handler failed", Err: err})
		d.unhandled(f)
		return nil

	default:
		d.unhandled(f)
		return nil
	}
}

func (d *Dispatcher) protocolError(err *ProtocolError) {
	d.log.Warn().Err(err).Msg("protocol error")
}

func (d *Dispatcher) unhandled(f Frame) {
	d.log.Debug().Stringer("frame", f).Msg("unhandled frame")
	if err := d.sink.Write(f); err != nil {
		d.log.Warn().Err(err).Msg("sink write failed")
	}
}
