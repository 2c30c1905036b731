// pkg/entity/debris.go
package entity

import (
	"github.com/opd-ai/go-spacewar/pkg/physics"
)

// Debris is what remains when something explodes. It is purely cosmetic:
// massless, no collision radius, swept out of the world once its time
// limit expires.
type Debris struct {
	BaseBody
	TimeLimit float64
}

// NewDebris creates a debris fragment
func NewDebris(position, velocity physics.Vector2D, appearance int, timeLimit float64) *Debris {
	return &Debris{
		BaseBody: BaseBody{
			ID:         GenerateID(),
			Position:   position,
			Velocity:   velocity,
			Appearance: appearance,
		},
		TimeLimit: timeLimit,
	}
}

// Move advances the fragment and counts down its remaining lifetime
func (d *Debris) Move(dt float64) {
	d.BaseBody.Move(dt)
	d.TimeLimit -= dt
	if d.TimeLimit < 0 {
		d.World.Remove(d)
	}
}
