package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bookaio/backend/pkg/models"
)

// DB is the subset of pgxpool.Pool the store needs
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore persists usage profiles in the profiles table
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a profile store backed by Postgres
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the usage profile for a user
func (s *PostgresStore) Get(ctx context.Context, userID string) (*models.UsageProfile, error) {
	var (
		plan    string
		count   int
		resetAt *time.Time
	)

	err := s.db.QueryRow(ctx,
		`SELECT plan, ebook_count_this_period, quota_reset_at FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&plan, &count, &resetAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read usage profile: %w", err)
	}

	profile := &models.UsageProfile{
		UserID:          userID,
		Plan:            models.ParsePlan(plan),
		CountThisPeriod: count,
	}
	if resetAt != nil {
		profile.ResetAt = *resetAt
	}

	return profile, nil
}

// Reset zeroes the period counter and advances the reset timestamp
func (s *PostgresStore) Reset(ctx context.Context, userID string, resetAt time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE profiles SET ebook_count_this_period = 0, quota_reset_at = $2 WHERE user_id = $1`,
		userID, resetAt,
	)
	if err != nil {
		return fmt.Errorf("failed to reset usage profile: %w", err)
	}
	return nil
}

// Increment adds one to the period counter. The increment happens in the
// database so concurrent requests cannot lose updates.
func (s *PostgresStore) Increment(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE profiles SET ebook_count_this_period = ebook_count_this_period + 1 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment usage counter: %w", err)
	}
	return nil
}
