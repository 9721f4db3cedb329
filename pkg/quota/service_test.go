package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookaio/backend/pkg/logger"
	"github.com/bookaio/backend/pkg/models"
)

type fakeStore struct {
	profiles   map[string]*models.UsageProfile
	resets     int
	increments int
}

func newFakeStore(profiles ...*models.UsageProfile) *fakeStore {
	fs := &fakeStore{profiles: make(map[string]*models.UsageProfile)}
	for _, p := range profiles {
		fs.profiles[p.UserID] = p
	}
	return fs
}

func (fs *fakeStore) Get(_ context.Context, userID string) (*models.UsageProfile, error) {
	p, ok := fs.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (fs *fakeStore) Reset(_ context.Context, userID string, resetAt time.Time) error {
	fs.resets++
	p := fs.profiles[userID]
	p.CountThisPeriod = 0
	p.ResetAt = resetAt
	return nil
}

func (fs *fakeStore) Increment(_ context.Context, userID string) error {
	fs.increments++
	fs.profiles[userID].CountThisPeriod++
	return nil
}

func testLimits() models.PlanLimits {
	return models.PlanLimits{Free: 1, Essential: 3, Abundance: 10}
}

func newTestService(store Store, now time.Time) *Service {
	s := NewService(store, testLimits(), logger.Default())
	s.now = func() time.Time { return now }
	return s
}

func TestCheck_UnderLimit(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.UsageProfile{
		UserID: "u1", Plan: models.PlanEssential, CountThisPeriod: 2, ResetAt: now.Add(24 * time.Hour),
	})

	err := newTestService(store, now).Check(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Zero(t, store.resets)
}

func TestCheck_AtLimit(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.UsageProfile{
		UserID: "u1", Plan: models.PlanFree, CountThisPeriod: 1, ResetAt: now.Add(24 * time.Hour),
	})

	err := newTestService(store, now).Check(context.Background(), "u1")

	var exceeded *QuotaExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, models.PlanFree, exceeded.Plan)
	assert.Equal(t, 1, exceeded.Limit)
	assert.Contains(t, err.Error(), "free")
}

func TestCheck_StaleCounterResetsBeforeCompare(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.UsageProfile{
		// Counter at the limit, but the period is over
		UserID: "u1", Plan: models.PlanFree, CountThisPeriod: 1, ResetAt: now.Add(-time.Hour),
	})

	err := newTestService(store, now).Check(context.Background(), "u1")
	assert.NoError(t, err, "stale count must never cause a false quota-exceeded")

	assert.Equal(t, 1, store.resets)
	assert.Equal(t, 0, store.profiles["u1"].CountThisPeriod)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), store.profiles["u1"].ResetAt)
}

func TestCheck_ZeroResetAtTreatedAsStale(t *testing.T) {
	now := time.Date(2026, time.December, 3, 8, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.UsageProfile{
		UserID: "u1", Plan: models.PlanAbundance, CountThisPeriod: 4,
	})

	err := newTestService(store, now).Check(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), store.profiles["u1"].ResetAt)
}

func TestCheck_MissingProfileAdmits(t *testing.T) {
	store := newFakeStore()

	err := newTestService(store, time.Now()).Check(context.Background(), "ghost")
	assert.NoError(t, err)
}

func TestIncrement(t *testing.T) {
	now := time.Now()
	store := newFakeStore(&models.UsageProfile{UserID: "u1", Plan: models.PlanFree, ResetAt: now.Add(time.Hour)})
	svc := newTestService(store, now)

	require.NoError(t, svc.Increment(context.Background(), "u1"))
	require.NoError(t, svc.Increment(context.Background(), "u1"))

	assert.Equal(t, 2, store.increments)
	assert.Equal(t, 2, store.profiles["u1"].CountThisPeriod)
}

func TestUsage(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	resetAt := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.UsageProfile{
		UserID: "u1", Plan: models.PlanEssential, CountThisPeriod: 2, ResetAt: resetAt,
	})

	usage, err := newTestService(store, now).Usage(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, usage.UsageCount)
	assert.Equal(t, 3, usage.UsageLimit)
	assert.Equal(t, 1, usage.Remaining)
	assert.Equal(t, resetAt.Format(time.RFC3339), usage.ResetAt)
	assert.Equal(t, "essential", usage.Plan)
}

func TestUsage_StalePeriodReportsZero(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.UsageProfile{
		UserID: "u1", Plan: models.PlanFree, CountThisPeriod: 1, ResetAt: now.Add(-time.Hour),
	})

	usage, err := newTestService(store, now).Usage(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 0, usage.UsageCount)
	assert.Equal(t, 1, usage.Remaining)
}
