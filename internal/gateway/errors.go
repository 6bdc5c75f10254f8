package gateway

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a connection that has been closed.
var ErrClosed = errors.New("gateway: connection closed")

// TransportError wraps a failure of the underlying socket. It is always fatal.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HandshakeError reports a hello/identify exchange that did not go as expected.
type HandshakeError struct {
	Reason string
	Err    error
}

func (e *HandshakeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway handshake: %s: %v", e.Reason, e.Err)
	}
	return "gateway handshake: " + e.Reason
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// ProtocolError describes a frame that could not be processed. The session logs
// it and keeps going.
type ProtocolError struct {
	Frame  Frame
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("gateway protocol (%s): %s", e.Frame, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsFatal reports whether err must end the session.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var proto *ProtocolError
	return !errors.As(err, &proto)
}
