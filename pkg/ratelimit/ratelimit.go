// Package ratelimit provides short-window per-user request throttling,
// independent of plan quotas.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed bool
	// RetryAfter is the wait hint surfaced to denied callers
	RetryAfter time.Duration
}

// Limiter decides whether a user may issue another request right now
type Limiter interface {
	Allow(ctx context.Context, userID string) (Decision, error)
}
