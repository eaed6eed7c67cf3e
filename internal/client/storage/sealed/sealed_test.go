package sealed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/sessionkeeper/internal/client/storage"
)

// memStorage implements storage.Persistence for testing
type memStorage struct {
	data   map[string]string
	getErr error
	setErr error
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string]string{}}
}

func (m *memStorage) Set(ctx context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memStorage) Get(ctx context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	inner := newMemStorage()

	s, err := New(ctx, inner, "passphrase")
	require.NoError(t, err)
	assert.Contains(t, inner.data, SaltKey)

	require.NoError(t, s.Set(ctx, storage.KeyAccessToken, "access-token"))

	// В обёрнутом хранилище лежит шифротекст
	assert.NotEqual(t, "access-token", inner.data[storage.KeyAccessToken])

	got, err := s.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access-token", got)

	require.NoError(t, s.Delete(ctx, storage.KeyAccessToken))
	_, err = s.Get(ctx, storage.KeyAccessToken)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestStorage_ReopenWithSamePassphrase(t *testing.T) {
	ctx := context.Background()
	inner := newMemStorage()

	first, err := New(ctx, inner, "passphrase")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, storage.KeyRefreshToken, "refresh"))
	salt := inner.data[SaltKey]

	second, err := New(ctx, inner, "passphrase")
	require.NoError(t, err)
	assert.Equal(t, salt, inner.data[SaltKey], "соль не должна пересоздаваться")

	got, err := second.Get(ctx, storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", got)
}

func TestStorage_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	inner := newMemStorage()

	first, err := New(ctx, inner, "right")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, storage.KeyAccessToken, "access"))

	wrong, err := New(ctx, inner, "wrong")
	require.NoError(t, err)

	_, err = wrong.Get(ctx, storage.KeyAccessToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty passphrase", func(t *testing.T) {
		_, err := New(ctx, newMemStorage(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "passphrase cannot be empty")
	})

	t.Run("salt read failure", func(t *testing.T) {
		inner := newMemStorage()
		inner.getErr = errors.New("disk on fire")
		_, err := New(ctx, inner, "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read salt")
	})

	t.Run("salt write failure", func(t *testing.T) {
		inner := newMemStorage()
		inner.setErr = errors.New("read-only")
		_, err := New(ctx, inner, "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save salt")
	})

	t.Run("corrupted salt", func(t *testing.T) {
		inner := newMemStorage()
		inner.data[SaltKey] = "%%%"
		_, err := New(ctx, inner, "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode stored salt")
	})
}
