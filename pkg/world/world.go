// pkg/world/world.go

// Package world implements the game universe: an ordered set of bodies
// driven through a fixed per-tick pipeline of gravitation, movement,
// and collision detection, with safe add/remove during an update.
package world

import (
	"math/rand/v2"
	"time"

	"github.com/opd-ai/go-spacewar/pkg/entity"
	"github.com/opd-ai/go-spacewar/pkg/event"
)

// Default physics constants
const (
	DefaultGravity         = 0.01 // constant of gravitation
	DefaultBounceSpeedLoss = 0.1  // lose 10% speed when bouncing off something
)

// World is the game universe. It owns its bodies: membership order is
// insertion order and doubles as draw/update order. Bodies with a
// nonzero collision radius are tracked separately from radius-zero
// bodies so that cheap swarms (missiles, debris) never enter the
// pairwise collision scan against each other.
type World struct {
	gravity         float64
	bounceSpeedLoss float64
	time            float64

	objects       []entity.Body
	zeroRadius    []entity.Body
	nonzeroRadius []entity.Body

	inUpdate    bool
	addQueue    []entity.Body
	removeQueue []entity.Body

	rng    *rand.Rand
	events *event.Bus

	// Wall-clock spent in the last update's phases, for diagnostics only
	TimeForGravitation time.Duration
	TimeForCollisions  time.Duration
}

// NewWorld creates an empty universe with the default physics constants.
// A nil rng gets a time-seeded generator; pass a fixed-seed generator
// for deterministic simulations.
func NewWorld(rng *rand.Rand) *World {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	return &World{
		gravity:         DefaultGravity,
		bounceSpeedLoss: DefaultBounceSpeedLoss,
		rng:             rng,
		events:          event.NewEventBus(),
	}
}

// Gravity returns the constant of gravitation
func (w *World) Gravity() float64 {
	return w.gravity
}

// SetGravity replaces the constant of gravitation
func (w *World) SetGravity(g float64) {
	w.gravity = g
}

// BounceSpeedLoss returns the fraction of speed lost when bouncing
func (w *World) BounceSpeedLoss() float64 {
	return w.bounceSpeedLoss
}

// SetBounceSpeedLoss replaces the bounce speed loss fraction
func (w *World) SetBounceSpeedLoss(loss float64) {
	w.bounceSpeedLoss = loss
}

// Now returns the accumulated simulation time
func (w *World) Now() float64 {
	return w.time
}

// Rand returns the world's random number generator
func (w *World) Rand() *rand.Rand {
	return w.rng
}

// Events returns the bus that simulation events are published on
func (w *World) Events() *event.Bus {
	return w.events
}

// Objects returns the live bodies in insertion order. The slice is the
// world's own; callers must treat it as read-only.
func (w *World) Objects() []entity.Body {
	return w.objects
}

// Len returns the number of live bodies
func (w *World) Len() int {
	return len(w.objects)
}

// Add inserts a body into the universe. If an update is in progress the
// insertion is queued and applied once the update pass completes; a
// queued removal of the same body cancels out instead.
func (w *World) Add(obj entity.Body) {
	if w.inUpdate {
		if i := indexOf(w.removeQueue, obj); i >= 0 {
			w.removeQueue = removeAt(w.removeQueue, i)
		} else {
			w.addQueue = append(w.addQueue, obj)
		}
		return
	}
	w.attach(obj)
}

// Remove takes a body out of the universe, deferred symmetrically to Add
func (w *World) Remove(obj entity.Body) {
	if w.inUpdate {
		if i := indexOf(w.addQueue, obj); i >= 0 {
			w.addQueue = removeAt(w.addQueue, i)
		} else {
			w.removeQueue = append(w.removeQueue, obj)
		}
		return
	}
	w.detach(obj)
}

// attach makes a body live: membership, back-reference, radius bucket
func (w *World) attach(obj entity.Body) {
	w.objects = append(w.objects, obj)
	obj.SetWorld(w)
	if obj.GetRadius() != 0 {
		w.nonzeroRadius = append(w.nonzeroRadius, obj)
	} else {
		w.zeroRadius = append(w.zeroRadius, obj)
	}
}

// detach removes a live body and clears its back-reference
func (w *World) detach(obj entity.Body) {
	if i := indexOf(w.objects, obj); i >= 0 {
		w.objects = removeAt(w.objects, i)
	}
	obj.SetWorld(nil)
	if obj.GetRadius() != 0 {
		if i := indexOf(w.nonzeroRadius, obj); i >= 0 {
			w.nonzeroRadius = removeAt(w.nonzeroRadius, i)
		}
	} else {
		if i := indexOf(w.zeroRadius, obj); i >= 0 {
			w.zeroRadius = removeAt(w.zeroRadius, i)
		}
	}
}

// Update makes dt time units happen: gravity affects velocities,
// movement affects positions, collisions may affect both. Each phase
// runs over the membership as it stood when the update began; bodies
// added or removed from inside a callback are queued and applied
// atomically after the last phase.
func (w *World) Update(dt float64) {
	w.inUpdate = true
	w.time += dt

	// Gravitation: every massive body pulls on everything else. The loop
	// is O(M*N) with M the handful of massive bodies; reaction forces on
	// the massive body itself are never computed, since planets are
	// immune to gravity anyway.
	start := time.Now()
	for _, massive := range w.objects {
		if massive.GetMass() == 0 {
			continue
		}
		for _, obj := range w.objects {
			if obj != massive {
				obj.Gravitate(massive, dt)
			}
		}
	}
	w.TimeForGravitation = time.Since(start)

	// Movement: missiles and debris may expire here and remove
	// themselves through the deferred queue.
	for _, obj := range w.objects {
		obj.Move(dt)
	}

	// Collision detection: bodies with a collision radius are checked
	// pairwise against each other and against every radius-zero body.
	// Both callbacks always fire, even if the first one mutated state.
	start = time.Now()
	for n, obj1 := range w.nonzeroRadius {
		for _, obj2 := range w.nonzeroRadius[n+1:] {
			if w.Collide(obj1, obj2) {
				obj1.Collision(obj2)
				obj2.Collision(obj1)
			}
		}
		for _, obj2 := range w.zeroRadius {
			if w.Collide(obj1, obj2) {
				obj1.Collision(obj2)
				obj2.Collision(obj1)
			}
		}
	}
	w.TimeForCollisions = time.Since(start)

	w.inUpdate = false
	if len(w.addQueue) > 0 {
		for _, obj := range w.addQueue {
			w.attach(obj)
		}
		w.addQueue = w.addQueue[:0]
	}
	if len(w.removeQueue) > 0 {
		for _, obj := range w.removeQueue {
			w.detach(obj)
		}
		w.removeQueue = w.removeQueue[:0]
	}
}

// Collide checks whether two bodies overlap. Callers may use it to
// preview collisions before committing to a placement.
func (w *World) Collide(obj1, obj2 entity.Body) bool {
	collisionDistance := obj1.GetRadius() + obj2.GetRadius()
	return obj1.DistanceTo(obj2) < collisionDistance
}

// indexOf finds a body in a slice by identity
func indexOf(bodies []entity.Body, obj entity.Body) int {
	for i, b := range bodies {
		if b == obj {
			return i
		}
	}
	return -1
}

// removeAt deletes one element preserving order
func removeAt(bodies []entity.Body, i int) []entity.Body {
	return append(bodies[:i], bodies[i+1:]...)
}
