package events

import (
	"testing"
)

func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewEventBus()

	var got []Event
	bus.Subscribe(EventSignalGenerated, func(e Event) {
		got = append(got, e)
	})

	bus.Publish(EventSignalGenerated, map[string]interface{}{"symbol": "AAPL"})
	bus.Publish(EventCycleCompleted, nil)

	if len(got) != 1 {
		t.Fatalf("Expected 1 delivered event, got %d", len(got))
	}
	if got[0].Type != EventSignalGenerated {
		t.Errorf("Wrong event type delivered: %s", got[0].Type)
	}
	if got[0].Data["symbol"] != "AAPL" {
		t.Errorf("Payload lost in delivery: %+v", got[0].Data)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("Publish should stamp the event time")
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewEventBus()

	count := 0
	bus.SubscribeAll(func(e Event) { count++ })

	bus.Publish(EventEngineStarted, nil)
	bus.Publish(EventSignalGenerated, nil)
	bus.Publish(EventAgentError, nil)

	if count != 3 {
		t.Errorf("Catch-all subscriber should see every event, got %d", count)
	}
}

func TestMultipleSubscribersSameType(t *testing.T) {
	bus := NewEventBus()

	a, b := 0, 0
	bus.Subscribe(EventCycleCompleted, func(Event) { a++ })
	bus.Subscribe(EventCycleCompleted, func(Event) { b++ })

	bus.Publish(EventCycleCompleted, nil)

	if a != 1 || b != 1 {
		t.Errorf("Both subscribers should fire once, got %d and %d", a, b)
	}
}
