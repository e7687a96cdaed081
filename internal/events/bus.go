package events

import (
	"sync"
	"time"
)

// EventType represents the kinds of events the engine publishes
type EventType string

const (
	EventSignalGenerated EventType = "SIGNAL_GENERATED"
	EventCycleCompleted  EventType = "CYCLE_COMPLETED"
	EventAgentError      EventType = "AGENT_ERROR"
	EventEngineStarted   EventType = "ENGINE_STARTED"
	EventEngineStopped   EventType = "ENGINE_STOPPED"
)

// Event is one published occurrence
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber handles events
type Subscriber func(Event)

// EventBus fans events out to subscribers. Handlers run inline on the
// publisher's goroutine; keep them short or hand off internally.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber
}

// NewEventBus creates an empty bus
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[EventType][]Subscriber)}
}

// Subscribe registers a handler for one event type
func (b *EventBus) Subscribe(t EventType, s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[t] = append(b.subscribers[t], s)
}

// SubscribeAll registers a handler for every event type
func (b *EventBus) SubscribeAll(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allSubs = append(b.allSubs, s)
}

// Publish delivers an event to all matching subscribers
func (b *EventBus) Publish(t EventType, data map[string]interface{}) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subscribers[t]...)
	subs = append(subs, b.allSubs...)
	b.mu.RUnlock()

	evt := Event{Type: t, Timestamp: time.Now(), Data: data}
	for _, s := range subs {
		s(evt)
	}
}
