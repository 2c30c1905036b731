// pkg/entity/body_test.go
package entity_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/opd-ai/go-spacewar/pkg/entity"
	"github.com/opd-ai/go-spacewar/pkg/event"
	"github.com/opd-ai/go-spacewar/pkg/physics"
	"github.com/opd-ai/go-spacewar/pkg/world"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func vectorsAlmostEqual(a, b physics.Vector2D) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y)
}

// newTestWorld creates a deterministic world with the default physics
// constants
func newTestWorld() *world.World {
	return world.NewWorld(rand.New(rand.NewPCG(1, 1)))
}

func TestBaseBody_Gravitate(t *testing.T) {
	w := newTestWorld()

	sun := entity.NewPlanet(physics.Vector2D{X: 0, Y: 10}, 200, 20, 0)
	ball := entity.NewBody(physics.Vector2D{}, physics.Vector2D{}, 0, 1, 0)
	w.Add(sun)
	w.Add(ball)

	// a = G*m/r^2 = 0.01 * 200 / 100 = 0.02, pointing at the sun
	ball.Gravitate(sun, 1.0)
	if !vectorsAlmostEqual(ball.Velocity, physics.Vector2D{X: 0, Y: 0.02}) {
		t.Errorf("velocity after gravitation = %v, expected (0, 0.02)", ball.Velocity)
	}

	ball.Move(1.0)
	if !vectorsAlmostEqual(ball.Position, physics.Vector2D{X: 0, Y: 0.02}) {
		t.Errorf("position after move = %v, expected (0, 0.02)", ball.Position)
	}
}

// Every tick of an extended fall adds velocity pointing straight at
// the attracting mass; the pull never overshoots into oscillation.
func TestBaseBody_GravitatePullsTowardMassEveryTick(t *testing.T) {
	w := newTestWorld()

	sun := entity.NewPlanet(physics.Vector2D{X: 0, Y: 100}, 5000, 20, 0)
	ball := entity.NewBody(physics.Vector2D{X: 30, Y: 0}, physics.Vector2D{}, 0, 1, 0)
	w.Add(sun)
	w.Add(ball)

	for i := 0; i < 20; i++ {
		before := ball.Velocity
		ball.Gravitate(sun, 1.0)
		gained := ball.Velocity.Sub(before)
		toSun := sun.Position.Sub(ball.Position)

		if gained.Dot(toSun) <= 0 {
			t.Fatalf("tick %d: velocity gain %v points away from the mass (body at %v)",
				i, gained, ball.Position)
		}
		if skew := math.Abs(gained.Cross(toSun)); skew > epsilon*gained.Length()*toSun.Length() {
			t.Fatalf("tick %d: velocity gain %v is not parallel to the separation %v",
				i, gained, toSun)
		}
		ball.Move(1.0)
	}
}

func TestBaseBody_GravitateCoincident(t *testing.T) {
	w := newTestWorld()

	sun := entity.NewPlanet(physics.Vector2D{}, 200, 20, 0)
	ball := entity.NewBody(physics.Vector2D{}, physics.Vector2D{}, 0, 1, 0)
	w.Add(sun)
	w.Add(ball)

	// Coincident positions divide by zero; NaN propagates unguarded
	ball.Gravitate(sun, 1.0)
	if !math.IsNaN(ball.Velocity.X) || !math.IsNaN(ball.Velocity.Y) {
		t.Errorf("velocity = %v, expected NaN components", ball.Velocity)
	}
}

func TestBaseBody_Bounce(t *testing.T) {
	w := newTestWorld()

	asteroid := entity.NewBody(physics.Vector2D{X: 3, Y: 4}, physics.Vector2D{}, 0, 2, 0)
	tincan := entity.NewBody(physics.Vector2D{X: 0.5, Y: 4}, physics.Vector2D{X: 1.5, Y: -0.3}, 0, 1, 0)
	w.Add(asteroid)
	w.Add(tincan)

	tincan.Bounce(asteroid)

	// Reflected across the collision normal, with 10% speed loss
	if !vectorsAlmostEqual(tincan.Velocity, physics.Vector2D{X: -1.35, Y: -0.27}) {
		t.Errorf("velocity after bounce = %v, expected (-1.35, -0.27)", tincan.Velocity)
	}
	// Pushed out of the overlap along the normal
	if !vectorsAlmostEqual(tincan.Position, physics.Vector2D{X: 0, Y: 4}) {
		t.Errorf("position after bounce = %v, expected (0, 4)", tincan.Position)
	}
}

func TestBaseBody_BouncePublishesEvent(t *testing.T) {
	w := newTestWorld()

	a := entity.NewBody(physics.Vector2D{X: 0, Y: 0}, physics.Vector2D{X: 1, Y: 0}, 0, 1, 0)
	b := entity.NewBody(physics.Vector2D{X: 1.5, Y: 0}, physics.Vector2D{}, 0, 1, 0)
	w.Add(a)
	w.Add(b)

	var bounced []*event.BounceEvent
	w.Events().Subscribe(event.ObjectBounced, func(e event.Event) {
		bounced = append(bounced, e.(*event.BounceEvent))
	})

	a.Bounce(b)

	if len(bounced) != 1 {
		t.Fatalf("expected 1 bounce event, got %d", len(bounced))
	}
	if bounced[0].BodyID != uint64(a.GetID()) || bounced[0].OtherID != uint64(b.GetID()) {
		t.Errorf("bounce event ids = (%d, %d), expected (%d, %d)",
			bounced[0].BodyID, bounced[0].OtherID, a.GetID(), b.GetID())
	}
}

func TestBaseBody_AddDebris(t *testing.T) {
	w := newTestWorld()

	wreck := entity.NewBody(physics.Vector2D{X: 5, Y: 5}, physics.Vector2D{X: 10, Y: 0}, 0, 1, 0)
	w.Add(wreck)

	wreck.AddDebris(6, 2.0, 50)

	var debris []*entity.Debris
	for _, obj := range w.Objects() {
		if d, ok := obj.(*entity.Debris); ok {
			debris = append(debris, d)
		}
	}
	if len(debris) != 6 {
		t.Fatalf("expected 6 debris fragments, got %d", len(debris))
	}
	for _, d := range debris {
		if d.GetPosition() != wreck.Position {
			t.Errorf("debris spawned at %v, expected the wreck position %v", d.GetPosition(), wreck.Position)
		}
		// Inherited velocity is 30% of the wreck's, plus up to 2.0 scatter
		drift := d.GetVelocity().Sub(wreck.Velocity.Scale(0.3)).Length()
		if drift > 2.0+epsilon {
			t.Errorf("debris scatter %v exceeds the maximum 2.0", drift)
		}
		if d.TimeLimit != 50 {
			t.Errorf("debris time limit = %v, expected 50", d.TimeLimit)
		}
	}
}

func TestBaseBody_AddDebrisDefaultCount(t *testing.T) {
	w := newTestWorld()

	wreck := entity.NewBody(physics.Vector2D{}, physics.Vector2D{}, 0, 1, 0)
	w.Add(wreck)

	wreck.AddDebris(0, 1.0, 10)

	count := 0
	for _, obj := range w.Objects() {
		if _, ok := obj.(*entity.Debris); ok {
			count++
		}
	}
	if count < 3 || count > 5 {
		t.Errorf("default debris count = %d, expected 3 to 5", count)
	}
}

func TestDebris_Expires(t *testing.T) {
	w := newTestWorld()

	d := entity.NewDebris(physics.Vector2D{}, physics.Vector2D{X: 1, Y: 0}, 0, 2.5)
	w.Add(d)

	w.Update(1.0)
	w.Update(1.0)
	if w.Len() != 1 {
		t.Fatalf("debris expired early, %d objects left", w.Len())
	}

	w.Update(1.0)
	if w.Len() != 0 {
		t.Errorf("debris did not expire, %d objects left", w.Len())
	}
}

func TestPlanet_IgnoresGravityAndCollisions(t *testing.T) {
	w := newTestWorld()

	a := entity.NewPlanet(physics.Vector2D{X: 0, Y: 0}, 1000, 10, 0)
	b := entity.NewPlanet(physics.Vector2D{X: 5, Y: 0}, 1000, 10, 0)
	w.Add(a)
	w.Add(b)

	w.Update(1.0)

	if a.GetVelocity() != (physics.Vector2D{}) || b.GetVelocity() != (physics.Vector2D{}) {
		t.Errorf("planets moved: %v, %v", a.GetVelocity(), b.GetVelocity())
	}
	if a.GetPosition() != (physics.Vector2D{X: 0, Y: 0}) {
		t.Errorf("planet position changed to %v", a.GetPosition())
	}
}
