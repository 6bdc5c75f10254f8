package gateway

import (
	"encoding/json"
	"fmt"
)

// Opcodes carried in Frame.Op.
const (
	OpDispatch     = 0
	OpHeartbeat    = 1
	OpIdentify     = 2
	OpHello        = 10
	OpHeartbeatAck = 11
)

// Dispatch event names carried in Frame.T.
const (
	EventReady         = "READY"
	EventMessageCreate = "MESSAGE_CREATE"
)

// Frame is one gateway message in either direction.
type Frame struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

// Hello is the payload of the first frame the gateway sends.
type Hello struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

// Identify authenticates the connection.
type Identify struct {
	Token        string           `json:"token"`
	Capabilities int              `json:"capabilities"`
	Properties   ClientProperties `json:"properties"`
}

// ClientProperties describes the client to the gateway. The values are static.
type ClientProperties struct {
	OS                     string  `json:"os"`
	Browser                string  `json:"browser"`
	Device                 string  `json:"device"`
	SystemLocale           string  `json:"system_locale"`
	BrowserUserAgent       string  `json:"browser_user_agent"`
	BrowserVersion         string  `json:"browser_version"`
	OSVersion              string  `json:"os_version"`
	Referrer               string  `json:"referrer"`
	ReferringDomain        string  `json:"referring_domain"`
	ReferrerCurrent        string  `json:"referrer_current"`
	ReferringDomainCurrent string  `json:"referring_domain_current"`
	ReleaseChannel         string  `json:"release_channel"`
	ClientBuildNumber      int     `json:"client_build_number"`
	ClientEventSource      *string `json:"client_event_source"`
}

// DefaultClientProperties returns the descriptor sent with every identify.
func DefaultClientProperties() ClientProperties {
	return ClientProperties{
		OS:                "Windows",
		Browser:           "Chrome",
		SystemLocale:      "en-US",
		BrowserUserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		BrowserVersion:    "123.0.0.0",
		OSVersion:         "10",
		Referrer:          "https://search.brave.com/",
		ReferringDomain:   "search.brave.com",
		ReleaseChannel:    "stable",
		ClientBuildNumber: 281369,
	}
}

// NewFrame marshals payload into the d field of a frame with the given opcode.
// A nil payload encodes as JSON null.
func NewFrame(op int, payload any) (Frame, error) {
	d, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("encode op %d payload: %w", op, err)
	}
	return Frame{Op: op, D: d}, nil
}

// DecodePayload unmarshals the d field into v.
func (f Frame) DecodePayload(v any) error {
	if len(f.D) == 0 {
		return fmt.Errorf("op %d frame has no payload", f.Op)
	}
	return json.Unmarshal(f.D, v)
}

// String is used for log lines.
func (f Frame) String() string {
	if f.T != "" {
		return fmt.Sprintf("op=%d t=%s", f.Op, f.T)
	}
	return fmt.Sprintf("op=%d", f.Op)
}
