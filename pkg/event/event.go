// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-lander/pkg/physics"
)

// Type represents the type of event
type Type string

// Lander event types
const (
	SessionStarted  Type = "session_started"
	SessionFinished Type = "session_finished"
	StepCompleted   Type = "step_completed"
	ShipLanded      Type = "ship_landed"
	ShipDestroyed   Type = "ship_destroyed"
	ThrustEngaged   Type = "thrust_engaged"
	ThrustCut       Type = "thrust_cut"
	FuelLow         Type = "fuel_low"
	FuelExhausted   Type = "fuel_exhausted"
	AlertChanged    Type = "alert_changed"
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

// Subscription identifies a registered handler
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
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

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers.
// Handlers run synchronously on the caller's goroutine.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// ShipEvent carries the ship state at the moment of the event
type ShipEvent struct {
	BaseEvent
	Position physics.Vector2D
	Velocity physics.Vector2D
	Rotation int
	Fuel     int
}

// NewShipEvent creates a new ship event
func NewShipEvent(eventType Type, source interface{}, position, velocity physics.Vector2D, rotation, fuel int) *ShipEvent {
	return &ShipEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Position: position,
		Velocity: velocity,
		Rotation: rotation,
		Fuel:     fuel,
	}
}

// Cause names what the ship hit
type Cause string

const (
	CauseBounds     Cause = "bounds"
	CauseWall       Cause = "wall"
	CauseAsteroid   Cause = "asteroid"
	CauseLandingPad Cause = "landing_pad"
)

// DestroyedEvent is published once when the ship blows up
type DestroyedEvent struct {
	ShipEvent
	Cause Cause
}

// NewDestroyedEvent creates a new destruction event
func NewDestroyedEvent(source interface{}, cause Cause, position, velocity physics.Vector2D, rotation, fuel int) *DestroyedEvent {
	return &DestroyedEvent{
		ShipEvent: *NewShipEvent(ShipDestroyed, source, position, velocity, rotation, fuel),
		Cause:     cause,
	}
}

// Outcome is how a session ended
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeLanded    Outcome = "landed"
	OutcomeDestroyed Outcome = "destroyed"
	OutcomeStuck     Outcome = "stuck"
)

// SessionEvent marks the start or end of a session
type SessionEvent struct {
	BaseEvent
	Outcome Outcome
	Steps   uint64
}

// NewSessionEvent creates a new session event
func NewSessionEvent(eventType Type, source interface{}, outcome Outcome, steps uint64) *SessionEvent {
	return &SessionEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Outcome: outcome,
		Steps:   steps,
	}
}

// StepEvent is published after every simulation step
type StepEvent struct {
	BaseEvent
	Step      uint64
	Fuel      int
	Particles int
	Asteroids int
}

// NewStepEvent creates a new step event
func NewStepEvent(source interface{}, step uint64, fuel, particles, asteroids int) *StepEvent {
	return &StepEvent{
		BaseEvent: BaseEvent{
			EventType: StepCompleted,
			Source:    source,
		},
		Step:      step,
		Fuel:      fuel,
		Particles: particles,
		Asteroids: asteroids,
	}
}

// AlertEvent reports a change of the external block alert
type AlertEvent struct {
	BaseEvent
	Blocked bool
}

// NewAlertEvent creates a new alert event
func NewAlertEvent(source interface{}, blocked bool) *AlertEvent {
	return &AlertEvent{
		BaseEvent: BaseEvent{
			EventType: AlertChanged,
			Source:    source,
		},
		Blocked: blocked,
	}
}
