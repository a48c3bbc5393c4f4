// pkg/event/event.go
package event

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	ShipSpawned       Type = "ship_spawned"
	ShipDespawned     Type = "ship_despawned"
	WaypointReached   Type = "waypoint_reached"
	TargetArrived     Type = "target_arrived"
	BodyAttached      Type = "body_attached"
	TickSkipped       Type = "tick_skipped"
	SimulationStarted Type = "simulation_started"
	SimulationStopped Type = "simulation_stopped"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Cancel func()
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	var once sync.Once
	return &Subscription{
		ID: id,
		Cancel: func() {
			once.Do(func() { b.unsubscribe(eventType, id) })
		},
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			// Copy so an in-flight Publish keeps its snapshot intact.
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			b.handlers[eventType] = append(next, subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// ShipEvent reports a ship entering or leaving the simulation.
type ShipEvent struct {
	BaseEvent
	ShipID uint64
	Name   string
	Class  string
}

// NewShipEvent creates a new ship event
func NewShipEvent(eventType Type, source interface{}, shipID uint64, name, class string) *ShipEvent {
	return &ShipEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		ShipID: shipID,
		Name:   name,
		Class:  class,
	}
}

// NavigationEvent reports a ship reaching a waypoint or its final target.
type NavigationEvent struct {
	BaseEvent
	ShipID    uint64
	Position  mgl64.Vec3
	Remaining int
}

// NewNavigationEvent creates a new navigation event
func NewNavigationEvent(eventType Type, source interface{}, shipID uint64, position mgl64.Vec3, remaining int) *NavigationEvent {
	return &NavigationEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		ShipID:    shipID,
		Position:  position,
		Remaining: remaining,
	}
}

// BodyEvent reports a ship being registered with a physics backend.
type BodyEvent struct {
	BaseEvent
	ShipID  uint64
	Backend string
}

// NewBodyEvent creates a new body event
func NewBodyEvent(source interface{}, shipID uint64, backend string) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{
			EventType: BodyAttached,
			Source:    source,
		},
		ShipID:  shipID,
		Backend: backend,
	}
}

// TickEvent reports pacing decisions.
type TickEvent struct {
	BaseEvent
	Tick    uint64
	Elapsed time.Duration
}

// NewTickEvent creates a new tick event
func NewTickEvent(eventType Type, source interface{}, tick uint64, elapsed time.Duration) *TickEvent {
	return &TickEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Tick:    tick,
		Elapsed: elapsed,
	}
}

// SimulationEvent reports the simulation lifecycle.
type SimulationEvent struct {
	BaseEvent
	RunID string
	Ticks uint64
}

// NewSimulationEvent creates a new simulation event
func NewSimulationEvent(eventType Type, source interface{}, runID string, ticks uint64) *SimulationEvent {
	return &SimulationEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		RunID: runID,
		Ticks: ticks,
	}
}
