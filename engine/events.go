package engine

import "time"

// EventType identifies the kind of event emitted by the Engine.
type EventType int

const (
	// Telemetry events
	EventDetection EventType = iota + 1
	EventVoice
	EventArrival
	EventDecodeError

	// Broker connection events
	EventConnectionState

	// Order events
	EventOrderSubmitted
	EventOrderDelivered

	// Robot command events
	EventSequenceStarted
	EventSequenceCompleted
	EventSequenceFailed
)

// Event is the envelope emitted by the Engine's EventBus.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   interface{}
}

// DetectionEvent is emitted when the robot reports a detected customer.
type DetectionEvent struct {
	VisitorID string `json:"visitor_id"`
	Total     int    `json:"total"`
}

// VoiceEvent is emitted for a speech recognition result.
type VoiceEvent struct {
	Text   string `json:"text"`
	Signal string `json:"signal"`
}

// ArrivalEvent is emitted when the robot reports reaching a point.
// Announced is true when the arrival triggered the dining announcement.
type ArrivalEvent struct {
	PointID   string `json:"point_id"`
	PointName string `json:"point_name"`
	Announced bool   `json:"announced"`
}

// DecodeErrorEvent counts a telemetry payload dropped for decode failure.
type DecodeErrorEvent struct {
	Topic string `json:"topic"`
}

// ConnectionStateEvent is emitted on broker connection state changes.
type ConnectionStateEvent struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// OrderSubmittedEvent is emitted when a customer order goes to the backend.
type OrderSubmittedEvent struct {
	OrderUUID string `json:"order_uuid"`
	ItemCount int    `json:"item_count"`
}

// OrderDeliveredEvent is emitted when an order cycle is closed out.
type OrderDeliveredEvent struct {
	OrderUUID string `json:"order_uuid"`
}

// SequenceEvent describes a composite robot command's lifecycle.
type SequenceEvent struct {
	SeqID    string `json:"seq_id"`
	Sequence string `json:"sequence"`
	Serial   string `json:"serial"`
	Step     string `json:"step,omitempty"`
	Error    string `json:"error,omitempty"`
}
