package redis

import (
	"context"
	"testing"
	"time"

	"rillshop/internal/config"
	"rillshop/internal/models"
	"rillshop/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*RedisRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	repo, err := New(context.Background(), config.Redis{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	return repo, mr
}

func TestSessionLifecycle(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	want := models.Session{
		UserID:    42,
		Email:     "anna@example.com",
		Name:      "Anna",
		Role:      models.RoleUser,
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, repo.SaveSession(ctx, "abc", want, time.Hour))
	assert.True(t, mr.Exists("session:abc"))

	got, err := repo.Session(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, repo.DeleteSession(ctx, "abc"))
	_, err = repo.Session(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	assert.NoError(t, repo.DeleteSession(ctx, "abc"))
}

func TestSessionExpires(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, "abc", models.Session{UserID: 1}, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := repo.Session(ctx, "abc")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), config.Redis{Addr: addr})
	assert.Error(t, err)
}
