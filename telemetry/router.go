package telemetry

import (
	"encoding/json"
	"log"
	"sync"

	"maitred/orders"
)

// Speaker issues the reactive announcement when the robot reports arrival.
type Speaker interface {
	Say(serial, text string) error
}

// EventEmitter is the interface the router uses to surface telemetry to
// observers. Decode failures are reported here but never change dispatch
// control flow.
type EventEmitter interface {
	EmitDetection(visitorID string, total int)
	EmitVoice(text, signal string)
	EmitArrival(pointID, pointName string, announced bool)
	EmitDecodeError(topic string)
}

// Router decodes inbound telemetry envelopes and dispatches them by tag.
// It owns the detection log and the one reactive rule in the system: arrival
// at the dining area while an order is in flight triggers a spoken
// announcement.
type Router struct {
	session     *orders.Session
	speaker     Speaker
	handler     Handler
	emitter     EventEmitter
	serial      string
	diningLabel string
	arrivalText string

	mu           sync.Mutex
	detections   []string
	decodeErrors int

	// launch runs the reactive announcement without blocking dispatch.
	launch func(func())
}

// NewRouter creates a telemetry router. handler may be nil, in which case
// events are only logged and recorded.
func NewRouter(session *orders.Session, speaker Speaker, handler Handler, emitter EventEmitter, serial, diningLabel, arrivalText string) *Router {
	if handler == nil {
		handler = NoOpHandler{}
	}
	return &Router{
		session:     session,
		speaker:     speaker,
		handler:     handler,
		emitter:     emitter,
		serial:      serial,
		diningLabel: diningLabel,
		arrivalText: arrivalText,
		launch:      func(fn func()) { go fn() },
	}
}

// Dispatch is the entry point for raw (topic, payload) pairs from the broker.
// A payload that fails to decode is dropped: the counter and emitter see it,
// but no error reaches the messaging layer.
func (r *Router) Dispatch(topic string, payload []byte) {
	env, err := DecodeEnvelope(payload)
	if err != nil {
		r.mu.Lock()
		r.decodeErrors++
		r.mu.Unlock()
		log.Printf("telemetry: drop undecodable payload on %s: %v", topic, err)
		if r.emitter != nil {
			r.emitter.EmitDecodeError(topic)
		}
		return
	}

	switch env.Tag {
	case TagDetection:
		r.handleDetection(env)
	case TagVoice:
		r.handleVoice(env)
	case TagArrival:
		r.handleArrival(env)
	default:
		log.Printf("telemetry: unknown tag %q on %s", env.Tag, topic)
		r.handler.HandleUnknown(env)
	}
}

func (r *Router) handleDetection(env *Envelope) {
	visitorID := env.MessageID()
	if visitorID == "" {
		log.Printf("telemetry: detection without id, ignored")
		return
	}

	r.mu.Lock()
	r.detections = append(r.detections, visitorID)
	total := len(r.detections)
	r.mu.Unlock()

	log.Printf("telemetry: customer detected id=%s total=%d", visitorID, total)
	r.handler.HandleDetection(env, visitorID)
	if r.emitter != nil {
		r.emitter.EmitDetection(visitorID, total)
	}
}

func (r *Router) handleVoice(env *Envelope) {
	var v Voice
	if err := json.Unmarshal(env.Body, &v); err != nil {
		r.countDecodeError("voice", err)
		return
	}

	// Recognition results are logged only; a downstream handler may act.
	log.Printf("telemetry: voice text=%q signal=%q", v.Text, v.Signal)
	r.handler.HandleVoice(env, &v)
	if r.emitter != nil {
		r.emitter.EmitVoice(v.Text, v.Signal)
	}
}

func (r *Router) handleArrival(env *Envelope) {
	var a Arrival
	if err := json.Unmarshal(env.Body, &a); err != nil {
		r.countDecodeError("arrival", err)
		return
	}

	announce := a.PointName == r.diningLabel && r.session.Submitted()
	log.Printf("telemetry: arrival point=%s label=%q announce=%v", a.PointID, a.PointName, announce)

	if announce && r.speaker != nil {
		// Fire and forget: the announcement must not block dispatch, and its
		// outcome is only logged.
		serial, text := r.serial, r.arrivalText
		r.launch(func() {
			if err := r.speaker.Say(serial, text); err != nil {
				log.Printf("telemetry: arrival announcement failed: %v", err)
			}
		})
	}

	r.handler.HandleArrival(env, &a)
	if r.emitter != nil {
		r.emitter.EmitArrival(a.PointID, a.PointName, announce)
	}
}

func (r *Router) countDecodeError(kind string, err error) {
	r.mu.Lock()
	r.decodeErrors++
	r.mu.Unlock()
	log.Printf("telemetry: drop %s body: %v", kind, err)
	if r.emitter != nil {
		r.emitter.EmitDecodeError(kind)
	}
}

// DetectionCount returns the number of detection events since the last clear.
// Consumers poll this on a timer; there is no push channel for it.
func (r *Router) DetectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.detections)
}

// Detections returns a copy of the detection log.
func (r *Router) Detections() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.detections))
	copy(out, r.detections)
	return out
}

// ClearDetections resets the detection log.
func (r *Router) ClearDetections() {
	r.mu.Lock()
	r.detections = nil
	r.mu.Unlock()
}

// DecodeErrors returns the count of payloads dropped for decode failures.
func (r *Router) DecodeErrors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decodeErrors
}
