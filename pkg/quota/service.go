package quota

import (
	"context"
	"errors"
	"time"

	"github.com/bookaio/backend/pkg/logger"
	"github.com/bookaio/backend/pkg/models"
)

// Service applies plan limits to metered generation requests
type Service struct {
	store  Store
	limits models.PlanLimits
	log    logger.Logger

	// now is swappable in tests
	now func() time.Time
}

// NewService creates a quota service
func NewService(store Store, limits models.PlanLimits, log logger.Logger) *Service {
	return &Service{
		store:  store,
		limits: limits,
		log:    log,
		now:    time.Now,
	}
}

// Check verifies the user is under their plan limit. When the profile's
// reset timestamp has passed, the counter is zeroed and the timestamp
// advanced to the start of the next period before any comparison, so a
// stale count can never produce a false quota-exceeded result.
//
// A missing profile admits the request; provisioning is the auth
// collaborator's job and the gateway must not invent rows for it.
func (s *Service) Check(ctx context.Context, userID string) error {
	profile, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		s.log.Warn("usage profile missing, admitting request", "user_id", userID)
		return nil
	}
	if err != nil {
		return err
	}

	now := s.now()
	count := profile.CountThisPeriod

	if profile.ResetAt.IsZero() || now.After(profile.ResetAt) {
		count = 0
		if err := s.store.Reset(ctx, userID, nextPeriodStart(now)); err != nil {
			return err
		}
	}

	limit := s.limits.LimitFor(profile.Plan)
	if count >= limit {
		return &QuotaExceededError{Plan: profile.Plan, Limit: limit}
	}

	return nil
}

// Increment debits one generation from the user's quota. Callers invoke it
// only after the upstream call has succeeded: quota is charged on confirmed
// delivery, never on attempt.
func (s *Service) Increment(ctx context.Context, userID string) error {
	return s.store.Increment(ctx, userID)
}

// Usage returns usage statistics for the user
func (s *Service) Usage(ctx context.Context, userID string) (*models.UsageResponse, error) {
	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	count := profile.CountThisPeriod
	resetAt := profile.ResetAt
	if resetAt.IsZero() || now.After(resetAt) {
		count = 0
		resetAt = nextPeriodStart(now)
	}

	limit := s.limits.LimitFor(profile.Plan)
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &models.UsageResponse{
		UsageCount: count,
		UsageLimit: limit,
		Remaining:  remaining,
		ResetAt:    resetAt.Format(time.RFC3339),
		Plan:       string(profile.Plan),
	}, nil
}

// nextPeriodStart returns the first instant of the month after now
func nextPeriodStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}
