// pkg/engine/clock.go
package engine

import (
	"time"
)

// TimeSource is the fixed-timestep clock the game loop synchronizes on.
// Tests inject a stub so simulation speed never depends on wall time.
type TimeSource interface {
	// Now returns the current time in seconds.
	Now() float64
	// Delta returns the nominal wall-clock seconds per game tick.
	Delta() float64
	// Wait blocks until Now() reaches timePoint. It returns true if the
	// deadline was still in the future when Wait was called, false if
	// the caller is already running behind.
	Wait(timePoint float64) bool
}

// RealTimeSource is a ticking clock backed by the system timer
type RealTimeSource struct {
	delta float64
}

// NewRealTimeSource creates a clock ticking the given number of times
// per wall-clock second
func NewRealTimeSource(ticksPerSecond int) *RealTimeSource {
	return &RealTimeSource{
		delta: 1.0 / float64(ticksPerSecond),
	}
}

// Now returns the current wall-clock time in seconds
func (ts *RealTimeSource) Now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// Delta returns the seconds per tick
func (ts *RealTimeSource) Delta() float64 {
	return ts.delta
}

// Wait sleeps until the given time point
func (ts *RealTimeSource) Wait(timePoint float64) bool {
	timeToSleep := timePoint - ts.Now()
	if timeToSleep > 0 {
		time.Sleep(time.Duration(timeToSleep * float64(time.Second)))
	}
	return timeToSleep >= 0
}

// InstantTimeSource is a clock that never sleeps: Wait jumps straight
// to the deadline. Headless runs and tests use it to simulate as fast
// as the CPU allows.
type InstantTimeSource struct {
	now   float64
	delta float64
}

// NewInstantTimeSource creates a non-sleeping clock with the given
// nominal seconds per tick
func NewInstantTimeSource(delta float64) *InstantTimeSource {
	return &InstantTimeSource{delta: delta}
}

// Now returns the simulated time
func (ts *InstantTimeSource) Now() float64 {
	return ts.now
}

// Delta returns the seconds per tick
func (ts *InstantTimeSource) Delta() float64 {
	return ts.delta
}

// Wait advances the clock to the time point without sleeping
func (ts *InstantTimeSource) Wait(timePoint float64) bool {
	ts.now = timePoint
	return true
}
