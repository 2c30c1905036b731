// pkg/engine/state.go
package engine

import (
	"github.com/opd-ai/go-spacewar/pkg/entity"
	"github.com/opd-ai/go-spacewar/pkg/physics"
)

// GameState is a snapshot of the game, in world insertion order within
// each kind, suitable for rendering or network broadcast.
type GameState struct {
	Time     float64        `json:"time"`
	Ships    []ShipState    `json:"ships"`
	Planets  []PlanetState  `json:"planets"`
	Missiles []MissileState `json:"missiles"`
	Debris   []DebrisState  `json:"debris"`
}

// ShipState is a snapshot of a ship's queryable surface
type ShipState struct {
	ID         uint64           `json:"id"`
	Position   physics.Vector2D `json:"position"`
	Velocity   physics.Vector2D `json:"velocity"`
	Direction  float64          `json:"direction"`
	Health     float64          `json:"health"`
	Frags      int              `json:"frags"`
	Dead       bool             `json:"dead"`
	Radius     float64          `json:"radius"`
	Appearance int              `json:"appearance"`
	RespawnIn  float64          `json:"respawnIn,omitempty"`
}

// PlanetState is a snapshot of a planet
type PlanetState struct {
	ID         uint64           `json:"id"`
	Position   physics.Vector2D `json:"position"`
	Mass       float64          `json:"mass"`
	Radius     float64          `json:"radius"`
	Appearance int              `json:"appearance"`
}

// MissileState is a snapshot of a missile in flight
type MissileState struct {
	ID         uint64           `json:"id"`
	Position   physics.Vector2D `json:"position"`
	Velocity   physics.Vector2D `json:"velocity"`
	Appearance int              `json:"appearance"`
	LaunchedBy uint64           `json:"launchedBy,omitempty"`
}

// DebrisState is a snapshot of a debris fragment
type DebrisState struct {
	ID         uint64           `json:"id"`
	Position   physics.Vector2D `json:"position"`
	Appearance int              `json:"appearance"`
}

// Snapshot builds a state snapshot of every live body
func (g *Game) Snapshot() *GameState {
	state := &GameState{
		Time: g.World.Now(),
	}
	for _, obj := range g.World.Objects() {
		switch o := obj.(type) {
		case *entity.Ship:
			state.Ships = append(state.Ships, ShipState{
				ID:         uint64(o.GetID()),
				Position:   o.GetPosition(),
				Velocity:   o.GetVelocity(),
				Direction:  o.GetDirection(),
				Health:     o.Health,
				Frags:      o.Frags,
				Dead:       o.Dead,
				Radius:     o.GetRadius(),
				Appearance: o.GetAppearance(),
				RespawnIn:  g.TimeToRespawn(o),
			})
		case *entity.Planet:
			state.Planets = append(state.Planets, PlanetState{
				ID:         uint64(o.GetID()),
				Position:   o.GetPosition(),
				Mass:       o.GetMass(),
				Radius:     o.GetRadius(),
				Appearance: o.GetAppearance(),
			})
		case *entity.Missile:
			ms := MissileState{
				ID:         uint64(o.GetID()),
				Position:   o.GetPosition(),
				Velocity:   o.GetVelocity(),
				Appearance: o.GetAppearance(),
			}
			if o.LaunchedBy != nil {
				ms.LaunchedBy = uint64(o.LaunchedBy.GetID())
			}
			state.Missiles = append(state.Missiles, ms)
		case *entity.Debris:
			state.Debris = append(state.Debris, DebrisState{
				ID:         uint64(o.GetID()),
				Position:   o.GetPosition(),
				Appearance: o.GetAppearance(),
			})
		}
	}
	return state
}
