// pkg/engine/game.go

// Package engine orchestrates a world plus a fixed-timestep clock:
// collision-free random placement, auto-respawn of dead ships, and
// per-tick controller invocation.
package engine

import (
	"math/rand/v2"
	"time"

	"github.com/opd-ai/go-spacewar/pkg/config"
	"github.com/opd-ai/go-spacewar/pkg/entity"
	"github.com/opd-ai/go-spacewar/pkg/physics"
	"github.com/opd-ai/go-spacewar/pkg/world"
)

// Controller is a per-tick hook that steers a ship (AI or input-driven).
// Controllers run synchronously between ticks, in registration order,
// and must only mutate ship thrust intents through the ship command
// surface.
type Controller interface {
	Control()
}

// ControllerFunc adapts a plain function to the Controller interface
type ControllerFunc func()

// Control invokes the function
func (f ControllerFunc) Control() {
	f()
}

// Game owns exactly one world and drives it through fixed time steps.
// The zero value is not usable; create games with NewGame or New.
type Game struct {
	World *world.World
	Ships []*entity.Ship

	// Controllers is the ordered list of per-tick callbacks. The
	// presentation layer appends and removes entries between ticks.
	Controllers []Controller

	// TimeSource may be replaced before the first WaitForTick call,
	// e.g. with a stub in tests.
	TimeSource TimeSource

	cfg      *config.GameConfig
	rng      *rand.Rand
	timers   map[*entity.Ship]float64
	nextTick float64
	started  bool

	// Wall-clock diagnostics for the last tick
	TimeToUpdate time.Duration
	TimeWaiting  time.Duration
}

// NewGame creates an empty game around a fresh world. A nil rng derives
// a generator from the configured seed (time-seeded when the seed is 0).
func NewGame(cfg *config.GameConfig, rng *rand.Rand) *Game {
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	w := world.NewWorld(rng)
	w.SetGravity(cfg.Physics.Gravity)
	w.SetBounceSpeedLoss(cfg.Physics.BounceSpeedLoss)
	return &Game{
		World:      w,
		cfg:        cfg,
		rng:        rng,
		timers:     make(map[*entity.Ship]float64),
		TimeSource: NewRealTimeSource(cfg.Rules.TicksPerSecond),
	}
}

// New creates a fully-populated random game: a field of 2 to 19 planets
// and the configured number of ships, all placed without overlap.
func New(cfg *config.GameConfig, rng *rand.Rand) *Game {
	game := NewGame(cfg, rng)
	rng = game.rng

	planets := 2 + rng.IntN(18)
	for i := 0; i < planets; i++ {
		appearance := rng.IntN(cfg.PlanetKinds)
		radius := 5 + rng.Float64()*35
		mass := radius * radius * radius * (2 + rng.Float64()*4)
		planet := entity.NewPlanet(physics.Vector2D{}, mass, radius, appearance)
		game.RandomlyPlace(planet, cfg.WorldRadius, cfg.Rules.PlanetPlacementMargin)
	}

	for i := 0; i < cfg.Ships; i++ {
		game.AddShip()
	}
	return game
}

// AddShip creates a ship with the configured engine fit, places it
// collision-free within the start radius, and registers it as a player
// ship. Must only be called between ticks.
func (g *Game) AddShip() *entity.Ship {
	ship := entity.NewShip(physics.Vector2D{}, g.cfg.Ship.Size, g.randomDirection(), len(g.Ships))
	g.installStandardEngine(ship)
	g.RandomlyPlace(ship, g.cfg.ShipStartRadius, g.cfg.Rules.ShipPlacementMargin)
	return ship
}

// RemoveShip takes a player ship out of the game: out of the world, off
// the roster, and out of the respawn bookkeeping. Must only be called
// between ticks.
func (g *Game) RemoveShip(ship *entity.Ship) {
	g.World.Remove(ship)
	delete(g.timers, ship)
	for i, s := range g.Ships {
		if s == ship {
			g.Ships = append(g.Ships[:i], g.Ships[i+1:]...)
			break
		}
	}
}

// installStandardEngine fits a ship with the configured engine and
// combat constants, converting per-tick amounts to per-time-unit power.
func (g *Game) installStandardEngine(ship *entity.Ship) {
	dt := g.cfg.Rules.DeltaTime
	ship.Stats = entity.ShipStats{
		ForwardPower:    g.cfg.Rules.FrontThrustPerTick / dt,
		BackwardPower:   g.cfg.Rules.RearThrustPerTick / dt,
		BrakeFactor:     g.cfg.Ship.BrakeFactor,
		BrakeThreshold:  g.cfg.Ship.BrakeThreshold,
		RotationSpeed:   g.cfg.Rules.RotationPerTick / dt,
		LaunchSpeed:     g.cfg.Ship.LaunchSpeed,
		MissileRecoil:   g.cfg.Ship.MissileRecoil,
		MissileDamage:   g.cfg.Ship.MissileDamage,
		CollisionDamage: g.cfg.Ship.CollisionDamage,
		MissileTimeMin:  g.cfg.Ship.MissileTimeMin,
		MissileTimeMax:  g.cfg.Ship.MissileTimeMax,
	}
}

// randomDirection picks a heading snapped to the rotation granularity,
// so a freshly spawned ship sits exactly on a heading it can steer to.
func (g *Game) randomDirection() float64 {
	granularity := g.cfg.Rules.RotationPerTick
	steps := int(360 / granularity)
	return float64(g.rng.IntN(steps)) * granularity
}

// RandomlyPosition picks a collision-free random location for a body
// within worldRadius of the origin. The body is temporarily inflated by
// margin so neighbors keep their distance. Each full failed pass the
// search radius grows by 10%, so the search always terminates
// eventually, though not in a provably bounded number of tries.
func (g *Game) RandomlyPosition(obj entity.Body, worldRadius, margin float64) {
	obj.SetRadius(obj.GetRadius() + margin)
	for {
		obj.SetPosition(physics.FromPolar(g.rng.Float64()*360, g.rng.Float64()*worldRadius))
		if !g.collidesWithAny(obj) {
			break
		}
		worldRadius *= 1.1
	}
	obj.SetRadius(obj.GetRadius() - margin)
}

// collidesWithAny reports whether obj overlaps any other live body
func (g *Game) collidesWithAny(obj entity.Body) bool {
	for _, other := range g.World.Objects() {
		if other != obj && g.World.Collide(obj, other) {
			return true
		}
	}
	return false
}

// RandomlyPlace positions a body collision-free and adds it to the
// world. Ships are also registered as player ships.
func (g *Game) RandomlyPlace(obj entity.Body, worldRadius, margin float64) {
	g.RandomlyPosition(obj, worldRadius, margin)
	g.World.Add(obj)
	if ship, ok := obj.(*entity.Ship); ok {
		g.Ships = append(g.Ships, ship)
	}
}

// Respawn brings a dead ship back: repositioned collision-free within
// the respawn radius, velocity zeroed, heading snapped to the rotation
// granularity.
func (g *Game) Respawn(ship *entity.Ship) {
	g.RandomlyPosition(ship, g.cfg.Rules.RespawnRadius, g.cfg.Rules.ShipPlacementMargin)
	ship.SetVelocity(physics.Vector2D{})
	ship.SetDirection(g.randomDirection())
	ship.Respawn()
}

// AutoRespawn starts and drives the respawn countdown of every dead
// ship. Each ship has at most one timer; when it runs out the ship is
// respawned and the timer cleared.
func (g *Game) AutoRespawn() {
	for _, ship := range g.Ships {
		if !ship.Dead {
			continue
		}
		if _, ok := g.timers[ship]; !ok {
			g.timers[ship] = g.cfg.Rules.RespawnTime
			continue
		}
		g.timers[ship] -= g.cfg.Rules.DeltaTime
		if g.timers[ship] <= 0 {
			delete(g.timers, ship)
			g.Respawn(ship)
		}
	}
}

// TimeToRespawn returns the simulation time left before a dead ship
// respawns, for HUD display. Returns 0 if the ship is not waiting.
func (g *Game) TimeToRespawn(ship *entity.Ship) float64 {
	return g.timers[ship]
}

// SkipATick advances the wall-clock deadline without simulating
// anything (the game is paused).
func (g *Game) SkipATick() {
	if !g.started {
		g.started = true
		g.nextTick = g.TimeSource.Now() + g.TimeSource.Delta()
		g.TimeWaiting = 0
		return
	}
	start := time.Now()
	g.TimeSource.Wait(g.nextTick)
	g.nextTick = g.TimeSource.Now() + g.TimeSource.Delta()
	g.TimeWaiting = time.Since(start)
}

// WaitForTick advances the game by exactly one tick and blocks until
// the next tick deadline. The first call only primes the deadline and
// simulates nothing. Every later call advances the world by one
// DeltaTime, runs auto-respawn, invokes the controllers in order, and
// then waits. The deadline accumulates by a fixed delta regardless of
// how long the update took, so simulation speed is independent of
// frame-rate jitter; the return value is false when the caller is
// falling behind and may want to skip rendering. A late caller is never
// compensated with catch-up steps: one call, one tick.
func (g *Game) WaitForTick() bool {
	if !g.started {
		g.started = true
		g.nextTick = g.TimeSource.Now() + g.TimeSource.Delta()
		g.TimeWaiting = 0
		return true
	}
	start := time.Now()
	g.World.Update(g.cfg.Rules.DeltaTime)
	g.AutoRespawn()
	for _, controller := range g.Controllers {
		controller.Control()
	}
	g.TimeToUpdate = time.Since(start)

	start = time.Now()
	onSchedule := g.TimeSource.Wait(g.nextTick)
	g.TimeWaiting = time.Since(start)
	g.nextTick += g.TimeSource.Delta()
	return onSchedule
}

// Config returns the game's configuration
func (g *Game) Config() *config.GameConfig {
	return g.cfg
}

// Rand returns the game's random number generator
func (g *Game) Rand() *rand.Rand {
	return g.rng
}
