package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter enforces a fixed reset window per user in process memory.
// State is local to one serving instance and lost on restart; it protects
// against short bursts, not long-term quota.
type MemoryLimiter struct {
	entries map[string]*windowEntry
	mu      sync.Mutex

	maxRequests int
	window      time.Duration
}

// NewMemoryLimiter creates an in-memory fixed-window limiter
func NewMemoryLimiter(maxRequests int, window time.Duration) *MemoryLimiter {
	ml := &MemoryLimiter{
		entries:     make(map[string]*windowEntry),
		maxRequests: maxRequests,
		window:      window,
	}

	// Sweep expired windows so the map does not grow without bound
	go ml.sweep()

	return ml
}

// Allow checks and records one request for the user. On the first request,
// or after the current window has elapsed, the count resets to 1 and a new
// window begins; otherwise the count is incremented and compared against
// the maximum.
func (ml *MemoryLimiter) Allow(_ context.Context, userID string) (Decision, error) {
	now := time.Now()

	ml.mu.Lock()
	defer ml.mu.Unlock()

	entry, exists := ml.entries[userID]
	if !exists || now.After(entry.resetAt) {
		ml.entries[userID] = &windowEntry{count: 1, resetAt: now.Add(ml.window)}
		return Decision{Allowed: true}, nil
	}

	if entry.count >= ml.maxRequests {
		return Decision{Allowed: false, RetryAfter: ml.window}, nil
	}

	entry.count++
	return Decision{Allowed: true}, nil
}

// sweep removes expired entries every few window lengths
func (ml *MemoryLimiter) sweep() {
	interval := 3 * ml.window
	if interval < time.Minute {
		interval = time.Minute
	}

	for {
		time.Sleep(interval)

		now := time.Now()
		ml.mu.Lock()
		for userID, entry := range ml.entries {
			if now.After(entry.resetAt) {
				delete(ml.entries, userID)
			}
		}
		ml.mu.Unlock()
	}
}
