package gateway

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vanpelt/headcord/internal/logger"
)

// Beater is the part of Conn the heartbeat needs.
type Beater interface {
	SendHeartbeat(ctx context.Context) error
	Done() <-chan struct{}
}

// Heartbeat keeps the connection alive. It waits for SetInterval, fires once
// after a random fraction of the interval and then once per interval.
type Heartbeat struct {
	conn   Beater
	jitter func() float64
	log    zerolog.Logger

	mu       sync.Mutex
	interval time.Duration
	ready    chan struct{}
}

// NewHeartbeat returns a scheduler that sends through conn.
func NewHeartbeat(conn Beater) *Heartbeat {
	return &Heartbeat{
		conn:   conn,
		jitter: rand.Float64,
		log:    logger.Component("heartbeat"),
		ready:  make(chan struct{}),
	}
}

// SetInterval starts the schedule. Only the first call has an effect; later
// calls return false.
func (h *Heartbeat) SetInterval(interval time.Duration) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.interval > 0 || interval <= 0 {
		return false
	}
	h.interval = interval
	close(h.ready)
	return true
}

// Interval returns the configured interval, zero before SetInterval.
func (h *Heartbeat) Interval() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interval
}

// Run sends heartbeats until ctx ends or the connection closes. A failed send
// is returned and ends the session.
func (h *Heartbeat) Run(ctx context.Context) error {
	select {
	case <-h.ready:
	case <-ctx.Done():
		return nil
	case <-h.conn.Done():
		return nil
	}

	interval := h.Interval()
	first := firstDelay(interval, h.jitter())
	h.log.Debug().Dur("interval", interval).Dur("first", first).Msg("heartbeat scheduled")

	timer := time.NewTimer(first)
	defer timer.Stop()

	select {
	case <-timer.C:
		if err := h.beat(ctx); err != nil {
			return err
		}
	case <-ctx.Done():
		return nil
	case <-h.conn.Done():
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.beat(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		case <-h.conn.Done():
			return nil
		}
	}
}

// Trigger sends one heartbeat immediately. The periodic schedule is not reset.
func (h *Heartbeat) Trigger(ctx context.Context) error {
	h.log.Debug().Msg("heartbeat requested by gateway")
	return h.beat(ctx)
}

func (h *Heartbeat) beat(ctx context.Context) error {
	err := h.conn.SendHeartbeat(ctx)
	if err == nil {
		h.log.Debug().Msg("heartbeat sent")
		return nil
	}
	if errors.Is(err, ErrClosed) || ctx.Err() != nil {
		return nil
	}
	h.log.Error().Err(err).Msg("heartbeat failed")
	return err
}

// firstDelay scales interval by u, clamped into [0, interval).
func firstDelay(interval time.Duration, u float64) time.Duration {
	if interval <= 0 {
		return 0
	}
	d := time.Duration(float64(interval) * u)
	if d < 0 {
		return 0
	}
	if d >= interval {
		return interval - 1
	}
	return d
}
