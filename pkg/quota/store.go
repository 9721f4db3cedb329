// Package quota enforces per-plan generation limits against a durable
// per-user usage profile. The profile store is the single source of truth
// across serving instances.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookaio/backend/pkg/models"
)

// ErrProfileNotFound is returned when no usage profile exists for a user
var ErrProfileNotFound = errors.New("usage profile not found")

// QuotaExceededError carries the plan and limit so the response can name them
type QuotaExceededError struct {
	Plan  models.Plan
	Limit int
}

func (e *QuotaExceededError) Error() string {
	noun := "ebooks"
	if e.Limit == 1 {
		noun = "ebook"
	}
	return fmt.Sprintf("monthly quota reached (%d %s per month on the %s plan)", e.Limit, noun, e.Plan)
}

// Store persists per-user usage profiles
type Store interface {
	// Get returns the usage profile for a user, or ErrProfileNotFound
	Get(ctx context.Context, userID string) (*models.UsageProfile, error)
	// Reset zeroes the period counter and advances the reset timestamp
	Reset(ctx context.Context, userID string, resetAt time.Time) error
	// Increment adds one to the period counter as an atomic update
	Increment(ctx context.Context, userID string) error
}
