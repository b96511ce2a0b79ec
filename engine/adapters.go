package engine

import "maitred/messaging"

// telemetryEmitter adapts the engine's EventBus to the telemetry.EventEmitter interface.
type telemetryEmitter struct {
	bus *EventBus
}

func (e *telemetryEmitter) EmitDetection(visitorID string, total int) {
	e.bus.Emit(Event{Type: EventDetection, Payload: DetectionEvent{VisitorID: visitorID, Total: total}})
}

func (e *telemetryEmitter) EmitVoice(text, signal string) {
	e.bus.Emit(Event{Type: EventVoice, Payload: VoiceEvent{Text: text, Signal: signal}})
}

func (e *telemetryEmitter) EmitArrival(pointID, pointName string, announced bool) {
	e.bus.Emit(Event{Type: EventArrival, Payload: ArrivalEvent{
		PointID: pointID, PointName: pointName, Announced: announced,
	}})
}

func (e *telemetryEmitter) EmitDecodeError(topic string) {
	e.bus.Emit(Event{Type: EventDecodeError, Payload: DecodeErrorEvent{Topic: topic}})
}

// orderEmitter adapts the engine's EventBus to the orders.EventEmitter interface.
type orderEmitter struct {
	bus *EventBus
}

func (e *orderEmitter) EmitOrderSubmitted(orderUUID string, itemCount int) {
	e.bus.Emit(Event{Type: EventOrderSubmitted, Payload: OrderSubmittedEvent{OrderUUID: orderUUID, ItemCount: itemCount}})
}

func (e *orderEmitter) EmitOrderDelivered(orderUUID string) {
	e.bus.Emit(Event{Type: EventOrderDelivered, Payload: OrderDeliveredEvent{OrderUUID: orderUUID}})
}

// sequenceEmitter adapts the engine's EventBus to the robot.EventEmitter interface.
type sequenceEmitter struct {
	bus *EventBus
}

func (e *sequenceEmitter) EmitSequenceStarted(seqID, sequence, serial string) {
	e.bus.Emit(Event{Type: EventSequenceStarted, Payload: SequenceEvent{SeqID: seqID, Sequence: sequence, Serial: serial}})
}

func (e *sequenceEmitter) EmitSequenceCompleted(seqID, sequence, serial string) {
	e.bus.Emit(Event{Type: EventSequenceCompleted, Payload: SequenceEvent{SeqID: seqID, Sequence: sequence, Serial: serial}})
}

func (e *sequenceEmitter) EmitSequenceFailed(seqID, sequence, serial, step string, err error) {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	e.bus.Emit(Event{Type: EventSequenceFailed, Payload: SequenceEvent{
		SeqID: seqID, Sequence: sequence, Serial: serial, Step: step, Error: errStr,
	}})
}

// connectionEmitter adapts the engine's EventBus to the messaging.StateEmitter interface.
type connectionEmitter struct {
	bus *EventBus
}

func (e *connectionEmitter) EmitConnectionState(old, new messaging.ConnectionState) {
	e.bus.Emit(Event{Type: EventConnectionState, Payload: ConnectionStateEvent{
		Old: old.String(), New: new.String(),
	}})
}
