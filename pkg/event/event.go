// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Combat and effect notifications published by the simulation. The
// presentation layer (sound, sprites, HUD) subscribes to these instead of
// the core calling back into it directly.
const (
	MissileLaunched Type = "missile_launched"
	MissileHit      Type = "missile_hit"
	MissileExploded Type = "missile_exploded"
	ShipDied        Type = "ship_died"
	ShipRespawned   Type = "ship_respawned"
	ObjectBounced   Type = "object_bounced"
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

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers, ok := b.handlers[event.GetType()]
	b.mu.RUnlock()

	if !ok {
		return
	}

	for _, handler := range handlers {
		handler(event)
	}
}

// ShipEvent contains information about ship-related events. KillerID is
// zero unless the event is a death with an attributed killer.
type ShipEvent struct {
	BaseEvent
	ShipID   uint64
	KillerID uint64
}

// NewShipEvent creates a new ship event
func NewShipEvent(eventType Type, source interface{}, shipID, killerID uint64) *ShipEvent {
	return &ShipEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		ShipID:   shipID,
		KillerID: killerID,
	}
}

// MissileEvent contains information about missile-related events. ShipID
// is the ship that launched or was hit by the missile, where relevant.
type MissileEvent struct {
	BaseEvent
	MissileID uint64
	ShipID    uint64
}

// NewMissileEvent creates a new missile event
func NewMissileEvent(eventType Type, source interface{}, missileID, shipID uint64) *MissileEvent {
	return &MissileEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		MissileID: missileID,
		ShipID:    shipID,
	}
}

// BounceEvent contains information about two bodies bouncing apart
type BounceEvent struct {
	BaseEvent
	BodyID  uint64
	OtherID uint64
}

// NewBounceEvent creates a new bounce event
func NewBounceEvent(source interface{}, bodyID, otherID uint64) *BounceEvent {
	return &BounceEvent{
		BaseEvent: BaseEvent{
			EventType: ObjectBounced,
			Source:    source,
		},
		BodyID:  bodyID,
		OtherID: otherID,
	}
}
