// pkg/engine/clock_test.go
package engine

import "testing"

func TestInstantTimeSource(t *testing.T) {
	ts := NewInstantTimeSource(0.05)

	if ts.Delta() != 0.05 {
		t.Errorf("Delta() = %v, expected 0.05", ts.Delta())
	}
	if ts.Now() != 0 {
		t.Errorf("Now() = %v before any wait, expected 0", ts.Now())
	}

	if !ts.Wait(1.0) {
		t.Error("Wait reported falling behind")
	}
	if ts.Now() != 1.0 {
		t.Errorf("Now() = %v after Wait(1.0), expected 1.0", ts.Now())
	}

	// Jumping backwards is fine for a simulated clock
	ts.Wait(0.5)
	if ts.Now() != 0.5 {
		t.Errorf("Now() = %v, expected 0.5", ts.Now())
	}
}

func TestRealTimeSource_Delta(t *testing.T) {
	ts := NewRealTimeSource(20)
	if ts.Delta() != 0.05 {
		t.Errorf("Delta() = %v for 20 ticks per second, expected 0.05", ts.Delta())
	}
}
