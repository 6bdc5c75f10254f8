package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandshake(t *testing.T) {
	c, ft := identifiedConn(t)
	defer c.Close()

	assert.Equal(t, StateIdentified, c.State())
	assert.Equal(t, 41250*time.Millisecond, c.HeartbeatInterval())
	assert.Nil(t, c.Sequence())

	frames := ft.frames(t)
	require.Len(t, frames, 1)
	assert.Equal(t, OpIdentify, frames[0].Op)

	var identify map[string]any
	require.NoError(t, json.Unmarshal(frames[0].D, &identify))
	assert.Equal(t, "tok", identify["token"])
	assert.EqualValues(t, 16381, identify["capabilities"])

	props, ok := identify["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Windows", props["os"])
	assert.EqualValues(t, 281369, props["client_build_number"])
	assert.Contains(t, props, "client_event_source")
	assert.Nil(t, props["client_event_source"])
}

func TestHandshakeFailures(t *testing.T) {
	tests := []struct {
		name  string
		hello any
	}{
		{"dispatch before hello", map[string]any{"op": OpDispatch, "t": "READY", "s": 1, "d": map[string]any{}}},
		{"zero interval", map[string]any{"op": OpHello, "d": map[string]any{"heartbeat_interval": 0}}},
		{"missing payload", map[string]any{"op": OpHello}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := newFakeTransport()
			c := NewConn(ConnConfig{HandshakeTimeout: time.Second, Dialer: &fakeDialer{transport: ft}})
			ft.push(t, tt.hello)

			require.NoError(t, c.Open(context.Background()))
			_, err := c.Handshake(context.Background())

			var hsErr *HandshakeError
			require.ErrorAs(t, err, &hsErr)
			assert.Equal(t, StateClosed, c.State())
			assert.Empty(t, ft.frames(t), "identify must not be sent")
		})
	}
}

func TestHandshakeTimeout(t *testing.T) {
	ft := newFakeTransport()
	c := NewConn(ConnConfig{HandshakeTimeout: 20 * time.Millisecond, Dialer: &fakeDialer{transport: ft}})
	require.NoError(t, c.Open(context.Background()))

	start := time.Now()
	_, err := c.Handshake(context.Background())
	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	var hsErr *HandshakeError
	var tErr *TransportError
	assert.ErrorAs(t, err, &hsErr)
	assert.ErrorAs(t, err, &tErr)
	assert.ErrorIs(t, err, errFakeTimeout)
	assert.Equal(t, StateClosed, c.State())
}

func TestHandshakeCancelled(t *testing.T) {
	ft := newFakeTransport()
	c := NewConn(ConnConfig{HandshakeTimeout: 5 * time.Second, Dialer: &fakeDialer{transport: ft}})
	require.NoError(t, c.Open(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err := c.Handshake(ctx)
	assert.Less(t, time.Since(start), time.Second, "cancel must not wait for the handshake timeout")
	assert.ErrorIs(t, err, context.Canceled)

	var hsErr *HandshakeError
	assert.False(t, errors.As(err, &hsErr))
	assert.Equal(t, StateClosed, c.State())
	assert.Empty(t, ft.frames(t), "identify must not be sent")
}

func TestOpenCancelledDial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewConn(ConnConfig{URL: "wss://nowhere", Dialer: &fakeDialer{err: context.Canceled}})

	err := c.Open(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	var tErr *TransportError
	assert.False(t, errors.As(err, &tErr))
	assert.Equal(t, StateClosed, c.State())
}

func TestOpenDialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	c := NewConn(ConnConfig{URL: "wss://nowhere", Dialer: &fakeDialer{err: dialErr}})

	err := c.Open(context.Background())
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "dial", tErr.Op)
	assert.ErrorIs(t, err, dialErr)
	assert.Equal(t, StateClosed, c.State())
	assert.True(t, IsFatal(err))

	assert.ErrorIs(t, c.Open(context.Background()), ErrClosed)
}

func TestReceiveTracksSequence(t *testing.T) {
	c, ft := identifiedConn(t)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.SendHeartbeat(ctx))
	assert.JSONEq(t, `{"op":1,"d":null}`, string(<-ft.written))

	ft.push(t, Frame{Op: OpDispatch, T: "READY", S: seq(1), D: json.RawMessage(`{}`)})
	f, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "READY", f.T)
	assert.Equal(t, StateActive, c.State())

	for _, s := range []int64{3, 2} {
		ft.push(t, Frame{Op: OpDispatch, T: "X", S: seq(s), D: json.RawMessage(`{}`)})
		_, err := c.Receive(ctx)
		require.NoError(t, err)
	}
	ft.push(t, Frame{Op: OpHeartbeatAck})
	_, err = c.Receive(ctx)
	require.NoError(t, err)

	require.NotNil(t, c.Sequence())
	assert.Equal(t, int64(3), *c.Sequence())

	require.NoError(t, c.SendHeartbeat(ctx))
	assert.JSONEq(t, `{"op":1,"d":3}`, string(<-ft.written))
}

func TestReceiveInvalidJSONIsNotFatal(t *testing.T) {
	c, ft := identifiedConn(t)
	defer c.Close()

	ft.in <- []byte("{not json")
	_, err := c.Receive(context.Background())
	var proto *ProtocolError
	require.ErrorAs(t, err, &proto)
	assert.False(t, IsFatal(err))
	assert.NotEqual(t, StateClosed, c.State())

	ft.push(t, Frame{Op: OpHeartbeatAck})
	f, err := c.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OpHeartbeatAck, f.Op)
}

func TestCloseUnblocksReceive(t *testing.T) {
	c, _ := identifiedConn(t)

	errc := make(chan error, 1)
	go func() {
		_, err := c.Receive(context.Background())
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Receive did not return after Close")
	}
	assert.Equal(t, StateClosed, c.State())
	assert.ErrorIs(t, c.Send(context.Background(), Frame{Op: OpHeartbeat}), ErrClosed)

	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestWriteFailureClosesConnection(t *testing.T) {
	c, ft := identifiedConn(t)
	ft.mu.Lock()
	ft.writeErr = errors.New("broken pipe")
	ft.mu.Unlock()

	err := c.SendHeartbeat(context.Background())
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "write", tErr.Op)
	assert.Equal(t, StateClosed, c.State())
}

func TestSequenceIsMaximumProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("sequence equals the maximum received s", prop.ForAll(
		func(values []int64) bool {
			c, ft := identifiedConn(t)
			defer c.Close()

			var highest int64 = -1
			for _, v := range values {
				ft.push(t, Frame{Op: OpDispatch, T: "X", S: seq(v), D: json.RawMessage(`{}`)})
				if _, err := c.Receive(context.Background()); err != nil {
					return false
				}
				if v > highest {
					highest = v
				}
			}
			got := c.Sequence()
			if len(values) == 0 {
				return got == nil
			}
			return got != nil && *got == highest
		},
		gen.SliceOf(gen.Int64Range(0, 1_000_000)),
	))

	properties.TestingRun(t)
}
