package orders

import "sync"

// Session holds the per-venue ordering state shared between the ordering
// surface and the telemetry router. The submitted flag is set when an order
// goes out and gates the robot's arrival announcement; it is cleared only by
// an explicit caller (e.g. when the order cycle finishes), never by the
// telemetry path itself.
type Session struct {
	mu        sync.RWMutex
	submitted bool
	lastOrder string
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// MarkSubmitted records that an order was just submitted.
func (s *Session) MarkSubmitted(orderUUID string) {
	s.mu.Lock()
	s.submitted = true
	s.lastOrder = orderUUID
	s.mu.Unlock()
}

// Submitted reports whether an order is currently in flight.
func (s *Session) Submitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitted
}

// LastOrder returns the UUID of the most recently submitted order.
func (s *Session) LastOrder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastOrder
}

// Clear resets the submitted flag.
func (s *Session) Clear() {
	s.mu.Lock()
	s.submitted = false
	s.mu.Unlock()
}
