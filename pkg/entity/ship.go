// pkg/entity/ship.go
package entity

import (
	"math"

	"github.com/opd-ai/go-spacewar/pkg/event"
	"github.com/opd-ai/go-spacewar/pkg/physics"
)

// SizeToRadius converts ship size to collision radius. Ships aren't
// circular; a collision radius smaller than the ship size makes the
// circular approximation look more or less convincing.
const SizeToRadius = 0.6

// ShipStats contains the tunable engine and combat constants of a ship
type ShipStats struct {
	ForwardPower    float64 // engine power for forward thrust
	BackwardPower   float64 // engine power for backward thrust
	BrakeFactor     float64 // speed retained per braking tick
	BrakeThreshold  float64 // speed below which brakes stop the ship dead
	RotationSpeed   float64 // lateral thruster power, degrees per time unit
	LaunchSpeed     float64 // missile launch speed
	MissileRecoil   float64 // recoil factor applied on launch and on hit
	MissileDamage   float64 // damage taken from a missile strike
	CollisionDamage float64 // damage taken from any other collision
	MissileTimeMin  float64 // lower bound of the missile self-destruct timer
	MissileTimeMax  float64 // upper bound of the missile self-destruct timer
}

// DefaultShipStats returns the standard engine fit
func DefaultShipStats() ShipStats {
	return ShipStats{
		ForwardPower:    0.1,
		BackwardPower:   0.05,
		BrakeFactor:     0.95,
		BrakeThreshold:  0.5,
		RotationSpeed:   5,
		LaunchSpeed:     3.0,
		MissileRecoil:   0.01,
		MissileDamage:   0.6,
		CollisionDamage: 0.05,
		MissileTimeMin:  1200,
		MissileTimeMax:  1300,
	}
}

// Ship is a powered ship. Controllers tell the ship what to do by
// setting thrust intents; the next Move applies and clears them. All
// commands are no-ops while the ship is dead.
type Ship struct {
	BaseBody
	Stats ShipStats
	Size  float64

	direction       float64
	directionVector physics.Vector2D

	// Per-tick thrust intents, write-then-consume: Move applies each one
	// and resets it to zero.
	ForwardThrust float64
	RearThrust    float64
	LeftThrust    float64
	RightThrust   float64
	EngageBrakes  bool

	Health    float64 // 1.0 when fresh, negative is fatal
	Frags     int     // kill count, may go negative on self-destruction
	Dead      bool
	SpawnTime float64 // world time of the last respawn
}

// NewShip creates a live ship with a full health bar and default stats
func NewShip(position physics.Vector2D, size, direction float64, appearance int) *Ship {
	ship := &Ship{
		BaseBody: BaseBody{
			ID:         GenerateID(),
			Position:   position,
			Radius:     size * SizeToRadius,
			Appearance: appearance,
		},
		Stats:  DefaultShipStats(),
		Size:   size,
		Health: 1.0,
	}
	ship.SetDirection(direction)
	return ship
}

// GetDirection returns the ship's heading in degrees, within [0, 360)
func (s *Ship) GetDirection() float64 {
	return s.direction
}

// SetDirection sets the ship's heading. The angle is normalized so that
// 0 <= direction < 360, and the cached unit direction vector is
// recomputed.
func (s *Ship) SetDirection(direction float64) {
	direction = math.Mod(direction, 360)
	if direction < 0 {
		direction += 360
	}
	s.direction = direction
	s.directionVector = physics.FromPolar(direction, 1.0)
}

// GetDirectionVector returns the cached unit vector of the heading
func (s *Ship) GetDirectionVector() physics.Vector2D {
	return s.directionVector
}

// TurnLeft tells the ship to turn left on the next tick
func (s *Ship) TurnLeft() {
	if s.Dead {
		return
	}
	s.LeftThrust = s.Stats.RotationSpeed
}

// TurnRight tells the ship to turn right on the next tick
func (s *Ship) TurnRight() {
	if s.Dead {
		return
	}
	s.RightThrust = s.Stats.RotationSpeed
}

// Accelerate tells the ship to accelerate in the direction it is facing
func (s *Ship) Accelerate() {
	if s.Dead {
		return
	}
	s.ForwardThrust = s.Stats.ForwardPower
}

// Backwards tells the ship to accelerate in the opposite direction
func (s *Ship) Backwards() {
	if s.Dead {
		return
	}
	s.RearThrust = s.Stats.BackwardPower
}

// Brake tells the ship to bleed off speed on the next tick
func (s *Ship) Brake() {
	if s.Dead {
		return
	}
	if s.Velocity != (physics.Vector2D{}) {
		s.EngageBrakes = true
	}
}

// Gravitate does nothing while the ship is alive, courtesy of the
// anti-gravity engine. The engine stops working at death.
func (s *Ship) Gravitate(massive Body, dt float64) {
	if !s.Dead {
		return
	}
	s.BaseBody.Gravitate(massive, dt)
}

// Move applies queued thrust intents in fixed order (turn left, turn
// right, forward, backward, brake), clears them, and advances the ship
func (s *Ship) Move(dt float64) {
	if s.LeftThrust != 0 {
		s.SetDirection(s.direction + s.LeftThrust*dt)
		s.LeftThrust = 0
	}
	if s.RightThrust != 0 {
		s.SetDirection(s.direction - s.RightThrust*dt)
		s.RightThrust = 0
	}
	if s.ForwardThrust != 0 {
		s.Velocity = s.Velocity.Add(s.directionVector.Scale(s.ForwardThrust * dt))
		s.ForwardThrust = 0
	}
	if s.RearThrust != 0 {
		s.Velocity = s.Velocity.Sub(s.directionVector.Scale(s.RearThrust * dt))
		s.RearThrust = 0
	}
	if s.EngageBrakes {
		if s.Velocity.Length() <= s.Stats.BrakeThreshold {
			s.Velocity = physics.Vector2D{}
		} else {
			s.Velocity = s.Velocity.Scale(s.Stats.BrakeFactor)
		}
		s.EngageBrakes = false
	}
	s.BaseBody.Move(dt)
}

// Collision handles a collision. Debris is harmless; a missile strike
// does missile damage, imparts recoil, and attributes a potential kill
// to the launching ship; anything else does collision damage and bounces
// the ship off. Damage keeps accumulating even on a dead ship, but a
// ship only dies once.
func (s *Ship) Collision(other Body) {
	var killedBy *Ship
	switch o := other.(type) {
	case *Debris:
		return
	case *Missile:
		s.Health -= s.Stats.MissileDamage
		killedBy = o.LaunchedBy
		s.Velocity = s.Velocity.Add(o.Velocity.Scale(s.Stats.MissileRecoil))
		s.World.Events().Publish(event.NewMissileEvent(event.MissileHit, s, uint64(o.ID), uint64(s.ID)))
	default:
		s.Health -= s.Stats.CollisionDamage
		s.Bounce(other)
	}
	if s.Health < 0 && !s.Dead {
		s.Die(killedBy)
	}
}

// Die marks the ship dead: thrust intents are dropped, the killer is
// awarded a frag (a kill without an attributed killer costs the ship one
// of its own), and a burst of debris is left at the wreck.
func (s *Ship) Die(killedBy *Ship) {
	s.Dead = true
	s.ForwardThrust = 0
	s.RearThrust = 0
	s.LeftThrust = 0
	s.RightThrust = 0
	var killerID uint64
	if killedBy == nil || killedBy == s {
		s.Frags--
	} else {
		killedBy.Frags++
		killerID = uint64(killedBy.ID)
	}
	s.AddDebris(9+s.World.Rand().IntN(12), s.Size*0.5, 50)
	s.World.Events().Publish(event.NewShipEvent(event.ShipDied, s, uint64(s.ID), killerID))
}

// Respawn brings the ship back to life with a full health bar. The
// caller is responsible for repositioning the ship and zeroing its
// velocity first.
func (s *Ship) Respawn() {
	s.Dead = false
	s.Health = 1.0
	if s.World != nil {
		s.SpawnTime = s.World.Now()
		s.World.Events().Publish(event.NewShipEvent(event.ShipRespawned, s, uint64(s.ID), 0))
	}
}

// Launch fires a missile from the ship's nose, inheriting the ship's
// velocity plus launch speed along the heading, and kicks the ship back
// with an equal-and-opposite recoil. The missile self-destructs after a
// randomized time limit.
func (s *Ship) Launch() {
	if s.Dead || s.World == nil {
		return
	}
	rng := s.World.Rand()
	timeLimit := s.Stats.MissileTimeMin + rng.Float64()*(s.Stats.MissileTimeMax-s.Stats.MissileTimeMin)
	missile := NewMissile(
		s.Position.Add(s.directionVector.Scale(s.Size)),
		s.Velocity.Add(s.directionVector.Scale(s.Stats.LaunchSpeed)),
		s.Appearance,
		s,
		timeLimit,
	)
	recoil := s.directionVector.Scale(s.Stats.LaunchSpeed * s.Stats.MissileRecoil)
	s.Velocity = s.Velocity.Sub(recoil)
	s.World.Add(missile)
	s.World.Events().Publish(event.NewMissileEvent(event.MissileLaunched, s, uint64(missile.ID), uint64(s.ID)))
}
