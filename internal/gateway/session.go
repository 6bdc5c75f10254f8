package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vanpelt/headcord/internal/logger"
	"github.com/vanpelt/headcord/internal/models"
	"github.com/vanpelt/headcord/internal/recovery"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	URL              string
	Token            string
	Capabilities     int
	HandshakeTimeout time.Duration
	// Dialer defaults to a gorilla/websocket dialer.
	Dialer Dialer
	// Sink receives unhandled frames. Nil discards them.
	Sink Sink
}

// Session ties one connection to its heartbeat and dispatcher and holds the
// state learned from READY.
type Session struct {
	ID string

	conn       *Conn
	heartbeat  *Heartbeat
	dispatcher *Dispatcher
	log        zerolog.Logger

	mu      sync.Mutex
	ready   *models.Ready
	onReady func(models.Ready)
}

// NewSession builds a session in the Disconnected state.
func NewSession(cfg SessionConfig) *Session {
	conn := NewConn(ConnConfig{
		URL:              cfg.URL,
		Token:            cfg.Token,
		Capabilities:     cfg.Capabilities,
		Properties:       DefaultClientProperties(),
		HandshakeTimeout: cfg.HandshakeTimeout,
		Dialer:           cfg.Dialer,
	})
	heartbeat := NewHeartbeat(conn)
	id := uuid.NewString()
	s := &Session{
		ID:         id,
		conn:       conn,
		heartbeat:  heartbeat,
		dispatcher: NewDispatcher(conn, heartbeat, cfg.Sink),
		log:        logger.Component("session").With().Str("session", id).Logger(),
	}
	s.dispatcher.Handle(EventReady, s.handleReady)
	return s
}

// Handle registers a dispatch handler. Call before Run.
func (s *Session) Handle(eventType string, h HandlerFunc) {
	s.dispatcher.Handle(eventType, h)
}

// OnReady registers a callback invoked with every decoded READY payload.
func (s *Session) OnReady(fn func(models.Ready)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReady = fn
}

// Connect dials the gateway, completes the handshake and arms the heartbeat.
func (s *Session) Connect(ctx context.Context) error {
	s.log.Info().Msg("connecting")
	if err := s.conn.Open(ctx); err != nil {
		return err
	}
	hello, err := s.conn.Handshake(ctx)
	if err != nil {
		return err
	}
	s.log.Info().Dur("heartbeat_interval", s.conn.HeartbeatInterval()).Msg("connected")
	return s.dispatcher.Dispatch(ctx, hello)
}

// Run drives the heartbeat and dispatcher until the connection closes, a task
// fails or ctx is cancelled. Cancellation is not an error.
func (s *Session) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(recovery.Guard("heartbeat", func() error {
		return s.heartbeat.Run(gctx)
	}))
	g.Go(recovery.Guard("dispatcher", func() error {
		return s.dispatcher.Run(gctx)
	}))
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.conn.Done():
		}
		// Unblocks a pending Receive.
		_ = s.conn.Close()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		s.log.Error().Err(err).Msg("session ended")
	} else {
		s.log.Info().Msg("session ended")
	}
	return err
}

// Close ends the session by closing the connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// State reports the connection state.
func (s *Session) State() State {
	return s.conn.State()
}

// Sequence reports the last sequence number seen.
func (s *Session) Sequence() *int64 {
	return s.conn.Sequence()
}

// Ready returns the READY snapshot, if one has arrived.
func (s *Session) Ready() (models.Ready, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready == nil {
		return models.Ready{}, false
	}
	return *s.ready, true
}

func (s *Session) handleReady(_ context.Context, f Frame) error {
	ready, err := models.DecodeReady(f.D)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ready = &ready
	fn := s.onReady
	s.mu.Unlock()

	s.log.Info().
		Str("user", ready.User.Username).
		Int("guilds", len(ready.Guilds)).
		Msg("ready")
	if fn != nil {
		fn(ready)
	}
	return nil
}
