package models

import (
	"encoding/json"
	"fmt"
)

// Decode error kinds.
const (
	KindSyntax  = "syntax"
	KindMissing = "missing"
)

// DecodeError reports a payload that does not match the expected schema.
type DecodeError struct {
	Kind  string
	Type  string
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case KindMissing:
		return fmt.Sprintf("decode %s: missing required field %q", e.Type, e.Field)
	default:
		return fmt.Sprintf("decode %s: %v", e.Type, e.Err)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeMessage parses and validates a MESSAGE_CREATE payload.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, &DecodeError{Kind: KindSyntax, Type: "message", Err: err}
	}
	required := []struct {
		field string
		ok    bool
	}{
		{"id", m.ID != ""},
		{"channel_id", m.ChannelID != ""},
		{"author.id", m.Author.ID != ""},
		{"author.username", m.Author.Username != ""},
		{"timestamp", !m.Timestamp.IsZero()},
	}
	for _, r := range required {
		if !r.ok {
			return Message{}, &DecodeError{Kind: KindMissing, Type: "message", Field: r.field}
		}
	}
	return m, nil
}

// DecodeReady parses and validates a READY payload.
func DecodeReady(data []byte) (Ready, error) {
	var r Ready
	if err := json.Unmarshal(data, &r); err != nil {
		return Ready{}, &DecodeError{Kind: KindSyntax, Type: "ready", Err: err}
	}
	if r.User.ID == "" {
		return Ready{}, &DecodeError{Kind: KindMissing, Type: "ready", Field: "user.id"}
	}
	if r.User.Username == "" {
		return Ready{}, &DecodeError{Kind: KindMissing, Type: "ready", Field: "user.username"}
	}
	return r, nil
}
