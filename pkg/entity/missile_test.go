// pkg/entity/missile_test.go
package entity_test

import (
	"testing"

	"github.com/opd-ai/go-spacewar/pkg/entity"
	"github.com/opd-ai/go-spacewar/pkg/event"
	"github.com/opd-ai/go-spacewar/pkg/physics"
)

func TestMissile_SelfDestructs(t *testing.T) {
	w := newTestWorld()

	missile := entity.NewMissile(physics.Vector2D{}, physics.Vector2D{X: 3, Y: 0}, 0, nil, 2.5)
	w.Add(missile)

	var exploded int
	w.Events().Subscribe(event.MissileExploded, func(e event.Event) {
		exploded++
	})

	w.Update(1.0)
	w.Update(1.0)
	if missile.Dead {
		t.Fatal("missile exploded before its time limit ran out")
	}

	w.Update(1.0)
	if !missile.Dead {
		t.Fatal("missile did not self-destruct")
	}
	if exploded != 1 {
		t.Errorf("explosion events = %d, expected 1", exploded)
	}

	// Gone from the world, leaving only debris
	for _, obj := range w.Objects() {
		if _, ok := obj.(*entity.Missile); ok {
			t.Error("exploded missile still in the world")
		}
	}
}

func TestMissile_ExplodeIsIdempotent(t *testing.T) {
	w := newTestWorld()

	missile := entity.NewMissile(physics.Vector2D{}, physics.Vector2D{}, 0, nil, 100)
	w.Add(missile)

	var exploded int
	w.Events().Subscribe(event.MissileExploded, func(e event.Event) {
		exploded++
	})

	// Two simultaneous collisions may both trigger the explosion
	missile.Explode()
	debrisAfterFirst := len(w.Objects())
	missile.Explode()

	if exploded != 1 {
		t.Errorf("explosion events = %d, expected 1", exploded)
	}
	if got := len(w.Objects()); got != debrisAfterFirst {
		t.Errorf("second explosion changed the world: %d -> %d objects", debrisAfterFirst, got)
	}
}

func TestMissile_ExplodesOnAnyContact(t *testing.T) {
	w := newTestWorld()

	planet := entity.NewPlanet(physics.Vector2D{X: 1, Y: 0}, 100, 5, 0)
	missile := entity.NewMissile(physics.Vector2D{}, physics.Vector2D{}, 0, nil, 100)
	w.Add(planet)
	w.Add(missile)

	missile.Collision(planet)
	if !missile.Dead {
		t.Error("missile survived a collision")
	}
}
