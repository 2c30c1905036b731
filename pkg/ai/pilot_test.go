// pkg/ai/pilot_test.go
package ai_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/opd-ai/go-spacewar/pkg/ai"
	"github.com/opd-ai/go-spacewar/pkg/entity"
	"github.com/opd-ai/go-spacewar/pkg/event"
	"github.com/opd-ai/go-spacewar/pkg/physics"
	"github.com/opd-ai/go-spacewar/pkg/world"
)

func newTestWorld() *world.World {
	return world.NewWorld(rand.New(rand.NewPCG(1, 1)))
}

func addShip(w *world.World, position physics.Vector2D, direction float64) *entity.Ship {
	ship := entity.NewShip(position, 10, direction, 0)
	w.Add(ship)
	return ship
}

func TestPilot_TurnsTowardEnemy(t *testing.T) {
	w := newTestWorld()
	ship := addShip(w, physics.Vector2D{}, 0) // nose along +x
	addShip(w, physics.Vector2D{X: 500, Y: -100}, 0)

	pilot := ai.NewPilot(ship)
	pilot.Control()

	// The enemy is clockwise of the heading, so the pilot turns right
	// and burns toward it.
	if ship.RightThrust < 2 {
		t.Errorf("RightThrust = %v, expected a right turn", ship.RightThrust)
	}
	if ship.LeftThrust != 0 {
		t.Errorf("LeftThrust = %v, expected 0", ship.LeftThrust)
	}
	if ship.ForwardThrust != 1 {
		t.Errorf("ForwardThrust = %v, expected full burn at long range", ship.ForwardThrust)
	}
}

func TestPilot_NoBurnAtCloseRange(t *testing.T) {
	w := newTestWorld()
	ship := addShip(w, physics.Vector2D{}, 0)
	addShip(w, physics.Vector2D{X: 30, Y: -5}, 0)

	pilot := ai.NewPilot(ship)
	pilot.Control()

	if ship.ForwardThrust != 0 {
		t.Errorf("ForwardThrust = %v, expected coasting inside close range", ship.ForwardThrust)
	}
	// Close range trades burn for a sharper turn rate.
	if ship.RightThrust < 10 {
		t.Errorf("RightThrust = %v, expected at least the close-range turn rate", ship.RightThrust)
	}
}

func TestPilot_BrakesWithoutEnemies(t *testing.T) {
	w := newTestWorld()
	ship := addShip(w, physics.Vector2D{}, 0)
	ship.SetVelocity(physics.Vector2D{X: 5})

	pilot := ai.NewPilot(ship)
	pilot.Control()

	if !ship.EngageBrakes {
		t.Error("expected the pilot to brake with nobody to chase")
	}
}

func TestPilot_IgnoresDeadShips(t *testing.T) {
	w := newTestWorld()
	ship := addShip(w, physics.Vector2D{}, 0)
	ship.SetVelocity(physics.Vector2D{X: 5})
	corpse := addShip(w, physics.Vector2D{X: 1000}, 0)
	corpse.Die(nil)

	pilot := ai.NewPilot(ship)
	pilot.Control()

	if !ship.EngageBrakes {
		t.Error("expected braking when the only other ship is dead")
	}
}

func TestPilot_DeadShipDoesNothing(t *testing.T) {
	w := newTestWorld()
	ship := addShip(w, physics.Vector2D{}, 0)
	addShip(w, physics.Vector2D{X: 200}, 0)

	pilot := ai.NewPilot(ship)
	ship.Die(nil)
	pilot.Control()

	if ship.LeftThrust != 0 || ship.RightThrust != 0 || ship.ForwardThrust != 0 {
		t.Error("dead ship received steering commands")
	}
}

func TestPilot_FiresOnHeadingCrossing(t *testing.T) {
	w := newTestWorld()
	ship := addShip(w, physics.Vector2D{}, 0)
	addShip(w, physics.Vector2D{X: 40}, 0)

	launched := 0
	w.Events().Subscribe(event.MissileLaunched, func(event.Event) {
		launched++
	})

	pilot := ai.NewPilot(ship)
	// Sweep the heading back and forth across the enemy. Each crossing
	// is a firing opportunity, and at 40 units half of them are taken.
	for i := 0; i < 20; i++ {
		pilot.Control()
		if i%2 == 0 {
			ship.SetDirection(90)
		} else {
			ship.SetDirection(270)
		}
	}

	if launched == 0 {
		t.Error("pilot never fired across twenty heading sweeps at point-blank range")
	}
}

func TestPilot_EvadesPlanet(t *testing.T) {
	w := newTestWorld()
	ship := addShip(w, physics.Vector2D{}, 0)
	w.Add(entity.NewPlanet(physics.Vector2D{X: -80, Y: 10}, 0, 20, 0))

	pilot := ai.NewPilot(ship)
	pilot.Control()

	// The planet is inside panic range, so the evade pass overrides
	// targeting and commits to a hard turn away from it.
	if ship.RightThrust != 1 {
		t.Errorf("RightThrust = %v, expected a hard turn clear of the planet", ship.RightThrust)
	}
	if ship.LeftThrust != 0 {
		t.Errorf("LeftThrust = %v, expected 0", ship.LeftThrust)
	}
}

func TestPilot_SwitchesToDecisivelyCloserEnemy(t *testing.T) {
	w := newTestWorld()
	ship := addShip(w, physics.Vector2D{}, 0)
	first := addShip(w, physics.Vector2D{X: 200, Y: 1}, 0)
	second := addShip(w, physics.Vector2D{X: -300, Y: 1}, 0)

	pilot := ai.NewPilot(ship)
	pilot.Control()

	// The lock holds while the other ship is only marginally closer,
	// then flips once the gap is decisive.
	second.SetPosition(physics.Vector2D{X: -199, Y: 1})
	pilot.Control()
	second.SetPosition(physics.Vector2D{X: -40, Y: 1})
	pilot.Control()

	if ship.RightThrust == 0 && ship.LeftThrust == 0 {
		t.Error("pilot stopped steering entirely")
	}
	if math.IsNaN(ship.LeftThrust) || math.IsNaN(ship.RightThrust) {
		t.Error("steering produced NaN thrust")
	}
	if first.GetWorld() != w {
		t.Error("enemy detached from the world")
	}
}
