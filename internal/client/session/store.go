// Package session holds the client's authentication session: the token pair,
// the client id derived from the access token, and the user's profile.
//
// The Store keeps the in-memory session consistent with Persistence. Tokens
// are persisted and the client id is derived as two independent steps: a
// token that fails to decode is still persisted, it just leaves the session
// authenticated but unidentified.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/sessionkeeper/internal/client/claims"
	"github.com/iudanet/sessionkeeper/internal/client/storage"
	"github.com/iudanet/sessionkeeper/pkg/api"
)

//go:generate moq -out profile_fetcher_mock.go . ProfileFetcher

// ProfileFetcher fetches the profile of the access token's owner
type ProfileFetcher interface {
	GetProfile(ctx context.Context, accessToken string) (*api.ProfileResponse, error)
}

// ClaimsDecoder extracts the client id from an access token
type ClaimsDecoder interface {
	ClientNumber(token string) (any, error)
}

// Option настраивает Store
type Option func(*Store)

// WithLogger sets the logger for fallbacks and lifecycle events
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithDecoder replaces the default clientNum decoder
func WithDecoder(d ClaimsDecoder) Option {
	return func(s *Store) { s.decoder = d }
}

// WithFailureHook registers fn to observe every swallowed failure.
// fn is called synchronously after the store state has been updated.
func WithFailureHook(fn func(Failure)) Option {
	return func(s *Store) { s.onFailure = fn }
}

// outcome is the result of a fallible step. The calling operation decides
// which fallback state a failure collapses to.
type outcome[T any] struct {
	value T
	err   error
}

// Store owns the Session and the Profile for the lifetime of the process.
// Create one with New at startup and pass it to whatever needs session state.
type Store struct {
	storage   storage.Persistence
	profiles  ProfileFetcher
	decoder   ClaimsDecoder
	logger    *slog.Logger
	onFailure func(Failure)

	session Session
	profile Profile

	// opMu serializes token mutations together with their storage I/O
	opMu sync.Mutex
	// mu guards session and profile
	mu sync.RWMutex
}

// New creates an empty, unauthenticated Store.
// Call LoadTokens to restore a session persisted by an earlier process.
func New(persistence storage.Persistence, profiles ProfileFetcher, opts ...Option) *Store {
	s := &Store{
		storage:  persistence,
		profiles: profiles,
		decoder:  claims.NewDecoder(claims.ClientNumberClaim),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns a copy of the current session
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.clone()
}

// Profile returns a copy of the current profile
func (s *Store) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetTokens stores a freshly issued token pair in memory and in persistence
// and derives the client id. Decode failures never surface: the client id
// becomes absent and the failure is reported. The returned error only
// reports persistence failures; memory is updated regardless.
func (s *Store) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	derived := s.deriveClientID(accessToken)

	s.mu.Lock()
	s.session = Session{
		AccessToken:  &accessToken,
		RefreshToken: &refreshToken,
		ClientID:     derived.value,
	}
	s.mu.Unlock()

	if derived.err != nil {
		s.report(ctx, Failure{Op: "setTokens", Kind: FailureDecode, Err: derived.err})
	}

	// Токены сохраняются даже если clientId не удалось получить
	err := errors.Join(
		s.storage.Set(ctx, storage.KeyAccessToken, accessToken),
		s.storage.Set(ctx, storage.KeyRefreshToken, refreshToken),
	)
	if err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}

	s.logger.DebugContext(ctx, "session tokens set", slog.Bool("identified", derived.err == nil))
	return nil
}

// LoadTokens restores the token pair from persistence and re-derives the
// client id. Missing keys load as absent; with no or an empty access token
// no decode is attempted. Repeated calls without writes in between give the same state.
// On a persistence read error the in-memory session is left untouched.
func (s *Store) LoadTokens(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	access := s.readToken(ctx, storage.KeyAccessToken)
	refresh := s.readToken(ctx, storage.KeyRefreshToken)
	if err := errors.Join(access.err, refresh.err); err != nil {
		return fmt.Errorf("failed to load tokens: %w", err)
	}

	next := Session{AccessToken: access.value, RefreshToken: refresh.value}

	var derived outcome[any]
	if access.value != nil && *access.value != "" {
		derived = s.deriveClientID(*access.value)
		next.ClientID = derived.value
	}

	s.mu.Lock()
	s.session = next
	s.mu.Unlock()

	if derived.err != nil {
		s.report(ctx, Failure{Op: "loadTokens", Kind: FailureDecode, Err: derived.err})
	}

	s.logger.DebugContext(ctx, "session tokens loaded", slog.Bool("authenticated", next.Authenticated()))
	return nil
}

// ClearTokens drops the session from memory and deletes both persisted keys.
// Safe to call without a session.
func (s *Store) ClearTokens(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	return s.clearTokens(ctx)
}

func (s *Store) clearTokens(ctx context.Context) error {
	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()

	err := errors.Join(
		s.storage.Delete(ctx, storage.KeyAccessToken),
		s.storage.Delete(ctx, storage.KeyRefreshToken),
	)
	if err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}

	return nil
}

// Logout ends the session: ClearTokens plus resetting the profile to its
// default. The profile is reset even when persistence fails.
func (s *Store) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.clearTokens(ctx)

	s.mu.Lock()
	s.profile = Profile{}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "logged out")
	return err
}

// FetchProfile refreshes the profile from the profile service. Without an
// access token (or with an empty one) it returns immediately. Failures are reported and leave the
// previous profile in place. The session is never modified.
//
// FetchProfile blocks until the service answers; ctx bounds the call.
func (s *Store) FetchProfile(ctx context.Context) {
	s.mu.RLock()
	token := cloneString(s.session.AccessToken)
	s.mu.RUnlock()

	if token == nil || *token == "" {
		return
	}

	fetched := s.fetchProfile(ctx, *token)
	if fetched.err != nil {
		s.report(ctx, Failure{Op: "fetchProfile", Kind: FailureProfileFetch, Err: fetched.err})
		return
	}

	s.mu.Lock()
	current := s.session.AccessToken
	stale := current == nil || *current != *token
	if !stale {
		s.profile = fetched.value
	}
	s.mu.Unlock()

	if stale {
		// Сессия сменилась во время запроса
		s.logger.DebugContext(ctx, "profile response dropped, session changed")
	}
}

func (s *Store) deriveClientID(accessToken string) outcome[any] {
	id, err := s.decoder.ClientNumber(accessToken)
	if err != nil {
		return outcome[any]{err: &DecodeError{Cause: err}}
	}
	return outcome[any]{value: id}
}

func (s *Store) readToken(ctx context.Context, key string) outcome[*string] {
	value, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return outcome[*string]{}
		}
		return outcome[*string]{err: fmt.Errorf("read %s: %w", key, err)}
	}
	return outcome[*string]{value: &value}
}

func (s *Store) fetchProfile(ctx context.Context, accessToken string) outcome[Profile] {
	resp, err := s.profiles.GetProfile(ctx, accessToken)
	if err != nil {
		return outcome[Profile]{err: &ProfileFetchError{Cause: err}}
	}
	if resp == nil {
		return outcome[Profile]{err: &ProfileFetchError{Cause: errors.New("empty profile response")}}
	}

	return outcome[Profile]{value: Profile{
		Nickname: resp.ClientNickname,
		Email:    resp.ClientEmail,
		// Сервис пока не отдает изображение профиля
		Image: "",
	}}
}

func (s *Store) report(ctx context.Context, f Failure) {
	s.logger.LogAttrs(ctx, slog.LevelWarn, "session operation fell back",
		slog.String("op", f.Op),
		slog.String("kind", string(f.Kind)),
		slog.Any("error", f.Err),
	)
	if s.onFailure != nil {
		s.onFailure(f)
	}
}
