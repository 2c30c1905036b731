// Package health exposes liveness and readiness probes for the game
// server, so orchestrators can tell a hung simulation from a busy one.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Check is one component's health probe
type Check interface {
	// Name returns the unique name of this check
	Name() string
	// Check returns an error when the component is unhealthy
	Check(ctx context.Context) error
}

// Status is the aggregated health of the application
type Status struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the health of an individual component
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker aggregates component checks behind HTTP probe handlers
type Checker struct {
	checks map[string]Check
	mu     sync.RWMutex
}

// NewChecker creates an empty health checker
func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]Check),
	}
}

// AddCheck registers a check, replacing any existing check of the same
// name
func (hc *Checker) AddCheck(check Check) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// CheckHealth runs every registered check. The aggregate is healthy
// only when all components are.
func (hc *Checker) CheckHealth(ctx context.Context) Status {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := Status{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
		} else {
			status.Checks[name] = ComponentHealth{
				Status: "healthy",
			}
		}
	}

	return status
}

// LivenessHandler answers 200 as long as the process serves requests
func (hc *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler runs all checks and answers 200 when everything is
// healthy, 503 otherwise.
func (hc *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// TickCheck reports unhealthy when the simulation clock stops moving
// between probes. A stalled clock means the game loop is wedged even
// though the process is still up.
type TickCheck struct {
	now func() float64

	mu       sync.Mutex
	lastTime float64
	lastSeen time.Time
	patience time.Duration
}

// NewTickCheck creates a tick progress check. now should return the
// accumulated simulation time; patience is how long the clock may
// stand still before the check fails.
func NewTickCheck(now func() float64, patience time.Duration) *TickCheck {
	return &TickCheck{
		now:      now,
		lastSeen: time.Now(),
		patience: patience,
	}
}

// Name returns the name of this check
func (t *TickCheck) Name() string {
	return "simulation"
}

// Check verifies the simulation clock has advanced recently
func (t *TickCheck) Check(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.now()
	if current != t.lastTime {
		t.lastTime = current
		t.lastSeen = time.Now()
		return nil
	}
	if stalled := time.Since(t.lastSeen); stalled > t.patience {
		return fmt.Errorf("simulation clock stalled at %.1f for %s", current, stalled.Round(time.Second))
	}
	return nil
}

// ListenerCheck reports unhealthy when the game listener is gone
type ListenerCheck struct {
	listenerAddr func() string
}

// NewListenerCheck creates a check around the server's listener address
func NewListenerCheck(listenerAddr func() string) *ListenerCheck {
	return &ListenerCheck{
		listenerAddr: listenerAddr,
	}
}

// Name returns the name of this check
func (n *ListenerCheck) Name() string {
	return "listener"
}

// Check verifies that the network listener is active
func (n *ListenerCheck) Check(ctx context.Context) error {
	if n.listenerAddr() == "" {
		return fmt.Errorf("listener is not active")
	}
	return nil
}
