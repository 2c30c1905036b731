// pkg/entity/body.go
package entity

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/opd-ai/go-spacewar/pkg/event"
	"github.com/opd-ai/go-spacewar/pkg/physics"
)

// ID is a unique identifier for a body
type ID uint64

var nextID atomic.Uint64

// GenerateID returns a process-unique body ID
func GenerateID() ID {
	return ID(nextID.Add(1))
}

// World is a body's view of the universe it inhabits. It is implemented
// by the world package. Bodies hold it as a non-owning back-reference
// that is set when the body is added to a world and cleared on removal;
// the world is the sole owner of body lifetime.
type World interface {
	// Gravity returns the constant of gravitation.
	Gravity() float64
	// BounceSpeedLoss returns the fraction of speed lost when bouncing.
	BounceSpeedLoss() float64
	// Now returns the accumulated simulation time.
	Now() float64
	// Rand returns the world's seeded random number generator.
	Rand() *rand.Rand
	// Events returns the bus combat and effect events are published on.
	Events() *event.Bus
	// Objects returns every body currently in the world, in insertion
	// order. The returned slice must not be mutated.
	Objects() []Body
	// Add inserts a body into the world. Safe to call during an update;
	// the insertion is deferred until the update pass completes.
	Add(Body)
	// Remove takes a body out of the world, deferred the same way.
	Remove(Body)
}

// Body is the base interface for everything living in a world
type Body interface {
	GetID() ID
	GetPosition() physics.Vector2D
	SetPosition(physics.Vector2D)
	GetVelocity() physics.Vector2D
	SetVelocity(physics.Vector2D)
	GetMass() float64
	GetRadius() float64
	SetRadius(float64)
	GetAppearance() int
	GetWorld() World
	SetWorld(World)
	// DistanceTo calculates the distance to another body.
	DistanceTo(other Body) float64
	// Gravitate reacts to gravity from a massive body for dt time units.
	Gravitate(massive Body, dt float64)
	// Move advances the body for dt time units.
	Move(dt float64)
	// Collision handles a collision with another body.
	Collision(other Body)
}

// BaseBody contains the state and default behavior shared by all bodies.
// On its own it represents a generic inert object: it is pulled by
// gravity, drifts with its velocity, and bounces off whatever it hits.
type BaseBody struct {
	ID         ID
	Position   physics.Vector2D
	Velocity   physics.Vector2D
	Mass       float64
	Radius     float64
	Appearance int
	World      World
}

// NewBody creates a generic object. Mass 0 means the object exerts no
// gravitational pull; radius 0 means it has no collision geometry.
func NewBody(position, velocity physics.Vector2D, mass, radius float64, appearance int) *BaseBody {
	return &BaseBody{
		ID:         GenerateID(),
		Position:   position,
		Velocity:   velocity,
		Mass:       mass,
		Radius:     radius,
		Appearance: appearance,
	}
}

// GetID returns the body's unique identifier
func (b *BaseBody) GetID() ID {
	return b.ID
}

// GetPosition returns the body's position
func (b *BaseBody) GetPosition() physics.Vector2D {
	return b.Position
}

// SetPosition moves the body to a new position
func (b *BaseBody) SetPosition(position physics.Vector2D) {
	b.Position = position
}

// GetVelocity returns the body's velocity
func (b *BaseBody) GetVelocity() physics.Vector2D {
	return b.Velocity
}

// SetVelocity replaces the body's velocity
func (b *BaseBody) SetVelocity(velocity physics.Vector2D) {
	b.Velocity = velocity
}

// GetMass returns the body's mass (0 = massless)
func (b *BaseBody) GetMass() float64 {
	return b.Mass
}

// GetRadius returns the body's collision radius (0 = no collision shape)
func (b *BaseBody) GetRadius() float64 {
	return b.Radius
}

// SetRadius replaces the body's collision radius. Must not be called
// while the body is attached to a world: the world partitions its
// members by radius at insertion time.
func (b *BaseBody) SetRadius(radius float64) {
	b.Radius = radius
}

// GetAppearance returns the opaque presentation tag
func (b *BaseBody) GetAppearance() int {
	return b.Appearance
}

// GetWorld returns the world the body lives in, or nil when detached
func (b *BaseBody) GetWorld() World {
	return b.World
}

// SetWorld installs or clears the world back-reference
func (b *BaseBody) SetWorld(w World) {
	b.World = w
}

// DistanceTo calculates the distance to another body
func (b *BaseBody) DistanceTo(other Body) float64 {
	return b.Position.Distance(other.GetPosition())
}

// Gravitate reacts to gravity from a massive body for dt time units.
//
// Newton's laws of motion give a = G * m2 / r**2 for the acceleration
// toward the massive body. The separation r is treated as constant over
// the step (explicit Euler), so velocity += direction * a * dt, which
// collapses to scaling the separation vector by G*m2*dt/r**3. Coincident
// positions divide by zero and propagate NaN/Inf unguarded.
func (b *BaseBody) Gravitate(massive Body, dt float64) {
	delta := massive.GetPosition().Sub(b.Position)
	distance := delta.Length()
	f := b.World.Gravity() * massive.GetMass() * dt / (distance * distance * distance)
	b.Velocity = b.Velocity.Add(delta.Scale(f))
}

// Move advances the body's position by its velocity for dt time units
func (b *BaseBody) Move(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}

// Collision handles a collision with another body. The default behavior
// is bouncing off things.
func (b *BaseBody) Collision(other Body) {
	b.Bounce(other)
}

// Bounce reflects the body's velocity across the collision normal,
// bleeds off some speed, and pushes the body out of the overlap. The
// bounce is not physically realistic (energy and momentum are not
// preserved).
func (b *BaseBody) Bounce(other Body) {
	normal := b.Position.Sub(other.GetPosition()).Scaled(1.0)
	delta := normal.Dot(b.Velocity)
	b.Velocity = b.Velocity.Sub(normal.Scaled(2 * delta))
	b.Velocity = b.Velocity.Scale(1 - b.World.BounceSpeedLoss())
	// Separate the objects so they no longer overlap
	collisionDistance := other.GetRadius() + b.Radius
	b.Position = other.GetPosition().Add(normal.Scaled(collisionDistance))
	b.World.Events().Publish(event.NewBounceEvent(b, uint64(b.ID), uint64(other.GetID())))
}

// AddDebris spawns a scattering of debris around the body. A count of 0
// picks a small random number of fragments. Debris velocity is derived
// from the body's own velocity plus a random scatter of up to maxScatter.
func (b *BaseBody) AddDebris(count int, maxScatter, timeLimit float64) {
	rng := b.World.Rand()
	if count == 0 {
		count = 3 + rng.IntN(3)
	}
	for i := 0; i < count; i++ {
		velocity := b.Velocity.Scale(0.3)
		velocity = velocity.Add(physics.FromPolar(rng.Float64()*360, rng.Float64()*maxScatter))
		debris := NewDebris(b.Position, velocity, rng.IntN(256), timeLimit)
		b.World.Add(debris)
	}
}
