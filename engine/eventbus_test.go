package engine

import "testing"

func TestEventBusSubscribeAll(t *testing.T) {
	bus := NewEventBus()

	var got []EventType
	bus.Subscribe(func(evt Event) {
		got = append(got, evt.Type)
	})

	bus.Emit(Event{Type: EventDetection})
	bus.Emit(Event{Type: EventOrderSubmitted})

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0] != EventDetection || got[1] != EventOrderSubmitted {
		t.Errorf("got types %v, want [EventDetection EventOrderSubmitted]", got)
	}
}

func TestEventBusSubscribeTypesFilters(t *testing.T) {
	bus := NewEventBus()

	var got []EventType
	bus.SubscribeTypes(func(evt Event) {
		got = append(got, evt.Type)
	}, EventArrival)

	bus.Emit(Event{Type: EventDetection})
	bus.Emit(Event{Type: EventArrival})
	bus.Emit(Event{Type: EventVoice})

	if len(got) != 1 || got[0] != EventArrival {
		t.Errorf("got %v, want only EventArrival", got)
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	id := bus.Subscribe(func(Event) { calls++ })

	bus.Emit(Event{Type: EventDetection})
	bus.Unsubscribe(id)
	bus.Emit(Event{Type: EventDetection})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestEventBusStampsTimestamp(t *testing.T) {
	bus := NewEventBus()

	var got Event
	bus.Subscribe(func(evt Event) { got = evt })
	bus.Emit(Event{Type: EventVoice})

	if got.Timestamp.IsZero() {
		t.Error("emitted event has zero timestamp")
	}
}
