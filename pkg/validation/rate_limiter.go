package validation

import (
	"sync"
	"time"
)

// RateLimiter caps how many messages each client may send per time
// window, using one token bucket per client ID. Buckets refill
// continuously in proportion to elapsed time.
type RateLimiter struct {
	maxTokens int
	window    time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	done    chan struct{}
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter allowing maxTokens requests per
// client per window. Call Close when done to stop the cleanup loop.
func NewRateLimiter(maxTokens int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		maxTokens: maxTokens,
		window:    window,
		buckets:   make(map[string]*bucket),
		done:      make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether the client may send another message now, and
// consumes a token if so.
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[clientID]
	if !ok {
		b = &bucket{tokens: float64(rl.maxTokens), lastRefill: now}
		rl.buckets[clientID] = b
	} else {
		refill := float64(rl.maxTokens) * float64(now.Sub(b.lastRefill)) / float64(rl.window)
		b.tokens += refill
		if b.tokens > float64(rl.maxTokens) {
			b.tokens = float64(rl.maxTokens)
		}
		b.lastRefill = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// cleanupLoop drops buckets of clients idle for two windows so the map
// does not grow without bound.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * rl.window)
			rl.mu.Lock()
			for clientID, b := range rl.buckets {
				if b.lastRefill.Before(cutoff) {
					delete(rl.buckets, clientID)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Close stops the background cleanup loop
func (rl *RateLimiter) Close() {
	close(rl.done)
}
