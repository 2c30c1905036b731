// pkg/entity/planet.go
package entity

import (
	"github.com/opd-ai/go-spacewar/pkg/physics"
)

// Planet is a massive body in the game universe. Planets attract other
// things but are themselves immune both to gravity and to collisions:
// computing stable orbits for N mutually attracting planets is too hard
// for the explicit-Euler integrator this simulation uses.
type Planet struct {
	BaseBody
}

// NewPlanet creates a planet at the given position
func NewPlanet(position physics.Vector2D, mass, radius float64, appearance int) *Planet {
	return &Planet{
		BaseBody: BaseBody{
			ID:         GenerateID(),
			Position:   position,
			Mass:       mass,
			Radius:     radius,
			Appearance: appearance,
		},
	}
}

// Gravitate does nothing: planets do not react to gravity
func (p *Planet) Gravitate(massive Body, dt float64) {
}

// Collision does nothing: nothing happens to a planet when it is struck
func (p *Planet) Collision(other Body) {
}
