package telemetry

import (
	"encoding/json"
	"fmt"
)

// Envelope type tags used by the robot's telemetry stream. The vendor carries
// them as small integers encoded as strings.
const (
	TagDetection = "1108" // a customer was detected by the robot's sensors
	TagVoice     = "1109" // speech recognition result
	TagArrival   = "1204" // the robot arrived at a navigation point
)

// Envelope is the inbound message wrapper. The body shape depends on the tag
// and is decoded in a second phase; unknown tags keep their raw body.
type Envelope struct {
	Tag  string          `json:"t"`
	Body json.RawMessage `json:"m"`
	ID   json.RawMessage `json:"id,omitempty"`
}

// MessageID renders the optional envelope id as a string. String ids are
// unquoted; anything else (numbers, objects) is kept as raw JSON text.
func (e *Envelope) MessageID() string {
	if len(e.ID) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.ID, &s); err == nil {
		return s
	}
	return string(e.ID)
}

// Voice is the body of a TagVoice envelope.
type Voice struct {
	Text   string `json:"tx"` // recognized speech
	Signal string `json:"sn"` // secondary recognition signal
}

// Arrival is the body of a TagArrival envelope.
type Arrival struct {
	PointID   string `json:"ti"` // target point id
	PointName string `json:"tn"` // target point label
}

// DecodeEnvelope parses raw payload bytes into an Envelope. The body is left
// raw; handlers decode it per tag.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Tag == "" {
		return nil, fmt.Errorf("decode envelope: missing type tag")
	}
	return &env, nil
}
