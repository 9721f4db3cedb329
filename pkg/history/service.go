// Package history persists a per-user log of completed generations. The
// studio UI reads it to show recent work; entries expire from view after
// 24 hours and only the 50 most recent are returned.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bookaio/backend/pkg/models"
)

const (
	maxEntries = 50
	visibility = 24 * time.Hour
)

// DB is the subset of pgxpool.Pool the service needs
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Service reads and writes generation log records
type Service struct {
	db DB
}

// NewService creates a history service
func NewService(db DB) *Service {
	return &Service{db: db}
}

// Record inserts a log entry for a completed generation
func (s *Service) Record(ctx context.Context, userID string, typ models.GenerationType, title, url string) (*models.HistoryItem, error) {
	now := time.Now()
	item := &models.HistoryItem{
		ID:        uuid.NewString(),
		Type:      string(typ),
		Title:     title,
		URL:       url,
		Timestamp: now.UnixMilli(),
		ExpiresAt: now.Add(visibility).UnixMilli(),
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO generation_history (id, user_id, type, title, url, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, userID, item.Type, item.Title, item.URL, now, now.Add(visibility),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert history record: %w", err)
	}

	return item, nil
}

// List returns the user's most recent unexpired entries, newest first
func (s *Service) List(ctx context.Context, userID string) ([]models.HistoryItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, type, title, url, created_at, expires_at
		 FROM generation_history
		 WHERE user_id = $1 AND expires_at > now()
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, maxEntries,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	items := make([]models.HistoryItem, 0, maxEntries)
	for rows.Next() {
		var (
			item      models.HistoryItem
			createdAt time.Time
			expiresAt time.Time
		)
		if err := rows.Scan(&item.ID, &item.Type, &item.Title, &item.URL, &createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		item.Timestamp = createdAt.UnixMilli()
		item.ExpiresAt = expiresAt.UnixMilli()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return items, nil
}
