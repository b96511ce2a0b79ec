package orders

// EventEmitter is the interface the orders package uses to emit events.
type EventEmitter interface {
	EmitOrderSubmitted(orderUUID string, itemCount int)
	EmitOrderDelivered(orderUUID string)
}
