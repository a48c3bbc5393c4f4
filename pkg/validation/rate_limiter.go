package validation

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket per key. The engine uses it to keep
// per-ship warnings from flooding the log at tick rate.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	clients     map[string]*clientLimiter
	mu          sync.Mutex
	now         func() time.Time
}

// clientLimiter tracks rate limiting state for a single key
type clientLimiter struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter allowing maxRequests per window
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(maxRequests, window, time.Now)
}

// NewRateLimiterWithClock is NewRateLimiter with an injected time source.
func NewRateLimiterWithClock(maxRequests int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		clients:     make(map[string]*clientLimiter),
		now:         now,
	}
}

// Allow checks if an event should be let through for the given key
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	limiter, exists := rl.clients[key]
	if !exists {
		limiter = &clientLimiter{tokens: rl.maxRequests, lastRefill: now}
		rl.clients[key] = limiter
	}

	// Refill proportionally to the fraction of the window that has passed
	elapsed := now.Sub(limiter.lastRefill)
	if elapsed > 0 && limiter.tokens < rl.maxRequests {
		tokensToAdd := int(float64(rl.maxRequests) * float64(elapsed) / float64(rl.window))
		if tokensToAdd > 0 {
			limiter.tokens += tokensToAdd
			if limiter.tokens > rl.maxRequests {
				limiter.tokens = rl.maxRequests
			}
			limiter.lastRefill = now
		}
	}

	if limiter.tokens > 0 {
		limiter.tokens--
		return true
	}
	return false
}

// Forget drops the state kept for key.
func (rl *RateLimiter) Forget(key string) {
	rl.mu.Lock()
	delete(rl.clients, key)
	rl.mu.Unlock()
}

// Prune removes keys idle for more than two windows.
func (rl *RateLimiter) Prune() {
	cutoff := rl.now().Add(-2 * rl.window)

	rl.mu.Lock()
	for key, limiter := range rl.clients {
		if limiter.lastRefill.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
	rl.mu.Unlock()
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}
