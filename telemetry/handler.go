package telemetry

// Handler receives decoded telemetry events from the Router. Embed NoOpHandler
// and override only the methods you need.
type Handler interface {
	HandleDetection(env *Envelope, visitorID string)
	HandleVoice(env *Envelope, v *Voice)
	HandleArrival(env *Envelope, a *Arrival)
	HandleUnknown(env *Envelope)
}

// NoOpHandler implements Handler with no-op methods.
type NoOpHandler struct{}

func (NoOpHandler) HandleDetection(*Envelope, string) {}
func (NoOpHandler) HandleVoice(*Envelope, *Voice)     {}
func (NoOpHandler) HandleArrival(*Envelope, *Arrival) {}
func (NoOpHandler) HandleUnknown(*Envelope)           {}

// Compile-time check that NoOpHandler implements Handler.
var _ Handler = NoOpHandler{}
