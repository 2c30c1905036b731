// pkg/entity/missile.go
package entity

import (
	"github.com/opd-ai/go-spacewar/pkg/event"
	"github.com/opd-ai/go-spacewar/pkg/physics"
)

// Missile is an unpowered projectile. Ships fire missiles; missiles
// cannot manoeuvre, explode on contact, and self-destruct once their
// time limit runs out. A missile is massless and has no collision
// radius, so missiles never collide with each other.
type Missile struct {
	BaseBody
	LaunchedBy *Ship // attribution for kills, non-owning
	TimeLimit  float64
	Dead       bool
}

// NewMissile creates a missile attributed to the launching ship
func NewMissile(position, velocity physics.Vector2D, appearance int, launchedBy *Ship, timeLimit float64) *Missile {
	return &Missile{
		BaseBody: BaseBody{
			ID:         GenerateID(),
			Position:   position,
			Velocity:   velocity,
			Appearance: appearance,
		},
		LaunchedBy: launchedBy,
		TimeLimit:  timeLimit,
	}
}

// Move advances the missile and counts down the self-destruct timer
func (m *Missile) Move(dt float64) {
	m.BaseBody.Move(dt)
	m.TimeLimit -= dt
	if m.TimeLimit < 0 {
		m.Explode()
	}
}

// Explode self-destructs the missile, leaving a little debris. Exploding
// twice is a no-op: two simultaneous collisions may both trigger it.
func (m *Missile) Explode() {
	if m.Dead {
		return
	}
	m.Dead = true
	m.AddDebris(0, 1.0, 5.0)
	m.World.Events().Publish(event.NewMissileEvent(event.MissileExploded, m, uint64(m.ID), 0))
	m.World.Remove(m)
}

// Collision explodes the missile, no matter what it hit
func (m *Missile) Collision(other Body) {
	m.Explode()
}
