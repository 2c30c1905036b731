// Package ai implements a heuristic pilot for a ship. The pilot only
// talks to the simulation through the public ship query and command
// surface; it never touches other ships or the world's membership.
package ai

import (
	"math/rand/v2"

	"github.com/opd-ai/go-spacewar/pkg/entity"
)

// enemyStickiness is the squared-distance margin a new target must win
// by before the pilot switches enemies, to avoid flip-flopping between
// two ships at similar range.
const enemyStickiness = 50 * 50

// evadeCutoff is the squared distance within which nearby obstacles are
// considered worth steering around.
const evadeCutoff = 300 * 300

// Pilot steers one ship: chase the nearest living enemy, fire when the
// nose sweeps across it, and keep clear of planets.
type Pilot struct {
	Ship *entity.Ship

	rng    *rand.Rand
	lastLR float64
	enemy  *entity.Ship
}

// NewPilot creates a pilot for a ship that is already part of a world
func NewPilot(ship *entity.Ship) *Pilot {
	return &Pilot{
		Ship:   ship,
		rng:    ship.GetWorld().Rand(),
		lastLR: 1,
	}
}

// Control issues this tick's commands. It does nothing while the ship
// is dead.
func (p *Pilot) Control() {
	if p.Ship.Dead {
		return
	}
	enemy := p.chooseEnemy()
	p.enemy = enemy
	if enemy != nil {
		p.target(enemy)
	} else {
		p.Ship.Brake()
	}
	p.evade(enemy)
}

// chooseEnemy keeps the current target unless a different living ship
// is decisively closer.
func (p *Pilot) chooseEnemy() *entity.Ship {
	var closest *entity.Ship
	var closestDist float64
	for _, obj := range p.Ship.GetWorld().Objects() {
		ship, ok := obj.(*entity.Ship)
		if !ok || ship == p.Ship || ship.Dead {
			continue
		}
		dist := ship.GetPosition().Sub(p.Ship.GetPosition()).LengthSquared()
		if closest == nil || dist < closestDist {
			closest = ship
			closestDist = dist
		}
	}
	enemy := p.enemy
	if enemy != nil && enemy.Dead {
		enemy = nil
	}
	if enemy == nil || enemy == closest {
		return closest
	}
	distToEnemy := enemy.GetPosition().Sub(p.Ship.GetPosition()).LengthSquared()
	if closest != nil && closestDist < distToEnemy-enemyStickiness {
		return closest
	}
	return enemy
}

// target steers toward an intercept point ahead of the enemy, firing
// when the heading sweeps across it, and manages speed relative to the
// enemy's.
func (p *Pilot) target(enemy *entity.Ship) {
	targetVector := enemy.GetPosition().Sub(p.Ship.GetPosition())
	movingTarget := targetVector.Add(enemy.GetVelocity()).Sub(p.Ship.GetVelocity())

	lr := p.Ship.GetDirectionVector().Cross(movingTarget)

	// Close in: tight turns, no burn. Far out: lazy turns under power.
	turnConst, thrustConst := 2, 1.0
	if targetVector.LengthSquared() < 2500 {
		turnConst, thrustConst = 10, 0
	}

	if lr > 0 {
		if p.lastLR < 0 {
			p.maybeFire(enemy, targetVector.Length())
		}
		p.Ship.LeftThrust = float64(turnConst + p.rng.IntN(5))
		p.Ship.RightThrust = 0
	} else {
		if p.lastLR > 0 {
			p.maybeFire(enemy, targetVector.Length())
		}
		p.Ship.LeftThrust = 0
		p.Ship.RightThrust = float64(turnConst + p.rng.IntN(5))
	}

	relVelocity := p.Ship.GetVelocity().Sub(enemy.GetVelocity()).Length()
	if relVelocity < 3 {
		relVelocity = 3
	}
	lo := int(relVelocity * 0.8)
	hi := int(relVelocity*1.5) + 1
	speedBudget := float64(lo+p.rng.IntN(hi-lo)) + 1
	if p.Ship.GetVelocity().LengthSquared() < speedBudget {
		p.Ship.ForwardThrust = thrustConst
		p.Ship.RearThrust = 0
	} else {
		p.Ship.Brake()
	}

	p.lastLR = lr
}

// evade nudges the heading away from the closest sizable obstacle. The
// current enemy is never evaded; ramming it is an acceptable outcome.
func (p *Pilot) evade(enemy *entity.Ship) {
	var doNotEvade entity.Body
	if enemy != nil && !enemy.Dead {
		doNotEvade = enemy
	}
	obstacle := p.closestObstacle(doNotEvade)
	if obstacle == nil {
		return
	}

	evadeVector := obstacle.GetPosition().Sub(p.Ship.GetPosition())
	movingTarget := evadeVector.Sub(p.Ship.GetVelocity())
	lr := p.Ship.GetDirectionVector().Cross(movingTarget)

	const evadeFactor = 1
	if evadeVector.Length() < 100 {
		if lr < 0 {
			p.Ship.LeftThrust = evadeFactor
			p.Ship.RightThrust = 0
		} else {
			p.Ship.RightThrust = evadeFactor
			p.Ship.LeftThrust = 0
		}
	} else {
		if lr < 0 {
			p.Ship.LeftThrust += evadeFactor
		} else {
			p.Ship.RightThrust += evadeFactor
		}
	}
}

// closestObstacle returns the nearest body with collision geometry,
// ignoring the ship itself and the given body, or nil when nothing is
// within the evade cutoff.
func (p *Pilot) closestObstacle(ignore entity.Body) entity.Body {
	distance := float64(evadeCutoff)
	var closest entity.Body
	for _, obj := range p.Ship.GetWorld().Objects() {
		if obj.GetRadius() == 0 {
			continue
		}
		if obj == entity.Body(p.Ship) || (ignore != nil && obj == ignore) {
			continue
		}
		dst := p.Ship.GetPosition().Sub(obj.GetPosition()).LengthSquared()
		if dst < distance {
			closest = obj
			distance = dst
		}
	}
	return closest
}

// maybeFire launches a missile with a probability that falls off with
// distance to the target.
func (p *Pilot) maybeFire(enemy *entity.Ship, distance float64) {
	if enemy.Dead {
		return
	}
	if p.rng.IntN(int(distance/30)+1) == 0 {
		p.Ship.Launch()
	}
}
