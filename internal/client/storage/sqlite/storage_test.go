package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/sessionkeeper/internal/client/storage"
)

func setupTestDB(t *testing.T) (*Storage, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "session.db")

	s, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	return s, dbPath
}

func TestNew_RunsMigrations(t *testing.T) {
	s, _ := setupTestDB(t)

	var name string
	err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='session_kv'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "session_kv", name)
}

func TestStorage_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := setupTestDB(t)

	_, err := s.Get(ctx, storage.KeyAccessToken)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, storage.KeyAccessToken, "first"))
	require.NoError(t, s.Set(ctx, storage.KeyAccessToken, "second"))

	got, err := s.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	require.NoError(t, s.Delete(ctx, storage.KeyAccessToken))
	_, err = s.Get(ctx, storage.KeyAccessToken)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	// Удаление отсутствующего ключа
	assert.NoError(t, s.Delete(ctx, storage.KeyAccessToken))
}

func TestStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, dbPath := setupTestDB(t)

	require.NoError(t, s.Set(ctx, storage.KeyRefreshToken, "refresh"))
	require.NoError(t, s.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(ctx, storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", got)
}

func TestStorage_ClosedDB(t *testing.T) {
	ctx := context.Background()
	s, _ := setupTestDB(t)
	require.NoError(t, s.Close())

	assert.Error(t, s.Set(ctx, "k", "v"))
	_, err := s.Get(ctx, "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrKeyNotFound)
}
