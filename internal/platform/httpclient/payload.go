package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Envelope declares how a backend wraps its payloads. It is fixed per backend
// by configuration; responses are never inspected to guess it.
type Envelope int

const (
	// EnvelopeBare backends return the payload itself.
	EnvelopeBare Envelope = iota
	// EnvelopeData backends return {"data": payload}.
	EnvelopeData
)

func ParseEnvelope(s string) (Envelope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bare":
		return EnvelopeBare, nil
	case "data", "":
		return EnvelopeData, nil
	default:
		return EnvelopeBare, fmt.Errorf("unknown envelope %q", s)
	}
}

func (e Envelope) String() string {
	if e == EnvelopeData {
		return "data"
	}
	return "bare"
}

type PayloadKind int

const (
	PayloadEmpty PayloadKind = iota
	PayloadJSON
	PayloadText
)

type Payload struct {
	Kind PayloadKind
	Raw  []byte
	Text string
}

var nullPayload = &Payload{Kind: PayloadEmpty}

// Unwrap returns the JSON value carried by the payload under the given
// envelope contract, or nil when there is none.
func (p *Payload) Unwrap(envelope Envelope) json.RawMessage {
	if p == nil || p.Kind != PayloadJSON {
		return nil
	}

	raw := bytes.TrimSpace(p.Raw)
	if envelope == EnvelopeData {
		result := gjson.GetBytes(raw, "data")
		if !result.Exists() {
			return nil
		}
		raw = []byte(result.Raw)
	}

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.RawMessage(raw)
}

// Decode unwraps the payload into v. It reports false, leaving v untouched,
// when the unwrapped payload is null.
func (p *Payload) Decode(envelope Envelope, v interface{}) (bool, error) {
	raw := p.Unwrap(envelope)
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode payload: %w", err)
	}
	return true, nil
}

// errorMessage picks the most useful message out of a failed response.
func (p *Payload) errorMessage(status int) string {
	switch p.Kind {
	case PayloadJSON:
		if msg := gjson.GetBytes(p.Raw, "message"); msg.Exists() && msg.Type != gjson.Null && msg.String() != "" {
			return msg.String()
		}
	case PayloadText:
		if p.Text != "" {
			return p.Text
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
