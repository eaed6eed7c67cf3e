package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/sessionkeeper/internal/client/iocli"
	"github.com/iudanet/sessionkeeper/internal/client/session"
	"github.com/iudanet/sessionkeeper/internal/client/storage"
	"github.com/iudanet/sessionkeeper/pkg/api"
)

// memStorage implements storage.Persistence for testing
type memStorage struct {
	data      map[string]string
	deleteErr error
}

func (m *memStorage) Set(ctx context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memStorage) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.data, key)
	return nil
}

type fakeFetcher struct {
	resp  *api.ProfileResponse
	err   error
	calls int
}

func (f *fakeFetcher) GetProfile(ctx context.Context, accessToken string) (*api.ProfileResponse, error) {
	f.calls++
	return f.resp, f.err
}

type testEnv struct {
	cli     *Cli
	out     *bytes.Buffer
	store   *session.Store
	storage *memStorage
	fetcher *fakeFetcher
}

func newTestEnv(t *testing.T, input string) *testEnv {
	t.Helper()
	st := &memStorage{data: map[string]string{}}
	f := &fakeFetcher{}
	store := session.New(st, f, session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	out := &bytes.Buffer{}

	return &testEnv{
		cli:     New(iocli.New(strings.NewReader(input), out), store),
		out:     out,
		store:   store,
		storage: st,
		fetcher: f,
	}
}

func token(t *testing.T, clientNum any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"clientNum": clientNum}).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestRunSetTokens_FromArgs(t *testing.T) {
	env := newTestEnv(t, "")
	access := token(t, 12)

	require.NoError(t, env.cli.RunSetTokens(context.Background(), []string{access, "refresh"}))

	assert.Equal(t, access, env.storage.data[storage.KeyAccessToken])
	assert.Equal(t, "refresh", env.storage.data[storage.KeyRefreshToken])
	assert.Contains(t, env.out.String(), "✓ Tokens saved")
	assert.Contains(t, env.out.String(), "Client ID: 12")
}

func TestRunSetTokens_Prompts(t *testing.T) {
	access := token(t, 3)
	env := newTestEnv(t, access+"\nrefresh-from-stdin\n")

	require.NoError(t, env.cli.RunSetTokens(context.Background(), nil))

	assert.Equal(t, access, env.storage.data[storage.KeyAccessToken])
	assert.Equal(t, "refresh-from-stdin", env.storage.data[storage.KeyRefreshToken])
	assert.Contains(t, env.out.String(), "Access token: ")
	assert.Contains(t, env.out.String(), "Refresh token: ")
}

func TestRunSetTokens_Undecodable(t *testing.T) {
	env := newTestEnv(t, "")

	require.NoError(t, env.cli.RunSetTokens(context.Background(), []string{"opaque", "r"}))

	assert.Contains(t, env.out.String(), "could not be decoded")
	assert.Equal(t, "opaque", env.storage.data[storage.KeyAccessToken])
}

func TestRunSetTokens_Errors(t *testing.T) {
	t.Run("too many args", func(t *testing.T) {
		env := newTestEnv(t, "")
		err := env.cli.RunSetTokens(context.Background(), []string{"a", "b", "c"})
		require.Error(t, err)
		assert.Empty(t, env.storage.data)
	})

	t.Run("stdin closed", func(t *testing.T) {
		env := newTestEnv(t, "")
		err := env.cli.RunSetTokens(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read access token")
	})
}

func TestRunStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("not authenticated", func(t *testing.T) {
		env := newTestEnv(t, "")
		require.NoError(t, env.cli.RunStatus(ctx))
		assert.Contains(t, env.out.String(), "Status: Not authenticated")
	})

	t.Run("authenticated and identified", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.storage.data[storage.KeyAccessToken] = token(t, 99)
		env.storage.data[storage.KeyRefreshToken] = "r"
		require.NoError(t, env.store.LoadTokens(ctx))

		require.NoError(t, env.cli.RunStatus(ctx))
		out := env.out.String()
		assert.Contains(t, out, "Status: Authenticated")
		assert.Contains(t, out, "Client ID: 99")
		assert.Contains(t, out, "Refresh token: present")
	})

	t.Run("authenticated but unidentified", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.storage.data[storage.KeyAccessToken] = "opaque"
		require.NoError(t, env.store.LoadTokens(ctx))

		require.NoError(t, env.cli.RunStatus(ctx))
		out := env.out.String()
		assert.Contains(t, out, "Client ID: unknown")
		assert.Contains(t, out, "Refresh token: absent")
	})
}

func TestRunProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("not authenticated", func(t *testing.T) {
		env := newTestEnv(t, "")
		require.NoError(t, env.cli.RunProfile(ctx))
		assert.Contains(t, env.out.String(), "Not authenticated")
		assert.Zero(t, env.fetcher.calls)
	})

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.fetcher.resp = &api.ProfileResponse{ClientNickname: "morpheus", ClientEmail: "m@example.com"}
		require.NoError(t, env.store.SetTokens(ctx, token(t, 1), "r"))

		require.NoError(t, env.cli.RunProfile(ctx))
		out := env.out.String()
		assert.Contains(t, out, "Nickname: morpheus")
		assert.Contains(t, out, "Email:    m@example.com")
		assert.NotContains(t, out, "Image:")
	})

	t.Run("fetch failure", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.fetcher.err = errors.New("503")
		require.NoError(t, env.store.SetTokens(ctx, token(t, 1), "r"))

		require.NoError(t, env.cli.RunProfile(ctx))
		assert.Contains(t, env.out.String(), "Profile unavailable")
	})
}

func TestRunLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t, "")
		require.NoError(t, env.store.SetTokens(ctx, token(t, 1), "r"))

		require.NoError(t, env.cli.RunLogout(ctx))
		assert.Empty(t, env.storage.data)
		assert.False(t, env.store.Session().Authenticated())
		assert.Contains(t, env.out.String(), "✓ Logout successful!")
	})

	t.Run("storage failure", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.storage.deleteErr = errors.New("read-only")

		err := env.cli.RunLogout(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logout failed")
	})
}
