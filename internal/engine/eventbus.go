package engine

import (
	"sync"
	"time"
)

// EventType names a kind of engine event.
type EventType string

const (
	EventMemoryStored    EventType = "memory_stored"
	EventMemoryRecalled  EventType = "memory_recalled"
	EventMemoryEvicted   EventType = "memory_evicted"
	EventMemoryForgotten EventType = "memory_forgotten"
	EventMemoryDecayed   EventType = "memory_decayed"
	EventGoalAdded       EventType = "goal_added"
	EventGoalProgress    EventType = "goal_progress"
	EventGoalCompleted   EventType = "goal_completed"
	EventGuardViolation  EventType = "guard_violation"
	EventToolExecuted    EventType = "tool_executed"
	EventToolFailed      EventType = "tool_failed"
	EventSeedLoaded      EventType = "seed_loaded"
)

// Event is a single engine event with optional payload.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      map[string]interface{}
}

// EventHandler is a function that handles events.
type EventHandler func(Event)

// EventBus fans engine events out to subscribers. It lets loggers and
// tests observe operations without the engine knowing about them.
type EventBus struct {
	mu          sync.RWMutex
	handlers    map[EventType][]EventHandler
	allHandlers []EventHandler
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

// Subscribe registers a handler for a specific event type.
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

// SubscribeAll registers a handler for all event types.
func (eb *EventBus) SubscribeAll(handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.allHandlers = append(eb.allHandlers, handler)
}

// Publish sends an event to all registered handlers. Handlers run on
// the caller's goroutine, in subscription order.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if handlers, ok := eb.handlers[event.Type]; ok {
		for _, handler := range handlers {
			handler(event)
		}
	}

	for _, handler := range eb.allHandlers {
		handler(event)
	}
}

// PublishSimple publishes an event without payload.
func (eb *EventBus) PublishSimple(eventType EventType) {
	eb.Publish(Event{Type: eventType})
}

// PublishWithData publishes an event with associated data.
func (eb *EventBus) PublishWithData(eventType EventType, data map[string]interface{}) {
	eb.Publish(Event{
		Type: eventType,
		Data: data,
	})
}
