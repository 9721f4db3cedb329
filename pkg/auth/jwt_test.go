package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookaio/backend/pkg/cache"
	"github.com/bookaio/backend/pkg/models"
)

const testSecret = "test-secret"

func TestJWTVerifier_Verify(t *testing.T) {
	token, err := GenerateJWT("user-123", "author@bookaio.app", "essential", testSecret, time.Hour)
	require.NoError(t, err)

	v := NewJWTVerifier(testSecret, nil)

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", identity.UserID)
	assert.Equal(t, "author@bookaio.app", identity.Email)
	assert.Equal(t, models.PlanEssential, identity.Plan)
}

func TestJWTVerifier_UnknownPlanDefaultsToFree(t *testing.T) {
	token, err := GenerateJWT("user-123", "author@bookaio.app", "platinum", testSecret, time.Hour)
	require.NoError(t, err)

	v := NewJWTVerifier(testSecret, nil)

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, identity.Plan)
}

func TestJWTVerifier_FailuresAreUniform(t *testing.T) {
	v := NewJWTVerifier(testSecret, nil)

	expired, err := GenerateJWT("user-123", "author@bookaio.app", "free", testSecret, -time.Hour)
	require.NoError(t, err)

	wrongKey, err := GenerateJWT("user-123", "author@bookaio.app", "free", "other-secret", time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":         expired,
		"wrong signature": wrongKey,
		"garbage":         "not-a-jwt",
	} {
		_, err := v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated, name)
	}
}

func TestJWTVerifier_RevokedToken(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cacheClient := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	defer cacheClient.Close()

	blacklist := NewTokenBlacklist(cacheClient)
	v := NewJWTVerifier(testSecret, blacklist)

	token, err := GenerateJWT("user-123", "author@bookaio.app", "free", testSecret, time.Hour)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = v.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, blacklist.Add(ctx, token, time.Hour))

	_, err = v.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
