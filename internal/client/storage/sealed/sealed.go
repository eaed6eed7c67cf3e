// Package sealed encrypts values before they reach the wrapped Persistence.
package sealed

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/iudanet/sessionkeeper/internal/client/storage"
	"github.com/iudanet/sessionkeeper/internal/crypto"
)

// SaltKey holds the Argon2id salt in the wrapped storage, unencrypted.
const SaltKey = "sealedSalt"

// Storage is a Persistence that seals values with a passphrase-derived key
type Storage struct {
	inner  storage.Persistence
	cipher *crypto.Cipher
}

var _ storage.Persistence = (*Storage)(nil)

// New wraps inner. The salt is read from inner or created on first use,
// so the same passphrase opens values written by earlier processes.
func New(ctx context.Context, inner storage.Persistence, passphrase string) (*Storage, error) {
	salt, err := loadOrCreateSalt(ctx, inner)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveStorageKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive storage key: %w", err)
	}

	c, err := crypto.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return &Storage{inner: inner, cipher: c}, nil
}

func loadOrCreateSalt(ctx context.Context, inner storage.Persistence) ([]byte, error) {
	encoded, err := inner.Get(ctx, SaltKey)
	switch {
	case err == nil:
		salt, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode stored salt: %w", err)
		}
		return salt, nil
	case errors.Is(err, storage.ErrKeyNotFound):
	default:
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err := inner.Set(ctx, SaltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("failed to save salt: %w", err)
	}

	return salt, nil
}

// Set seals value and stores it in the wrapped storage
func (s *Storage) Set(ctx context.Context, key, value string) error {
	sealed, err := s.cipher.Seal(value)
	if err != nil {
		return fmt.Errorf("failed to seal %q: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

// Get reads and opens the value. A wrong passphrase surfaces as an error here
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	value, err := s.cipher.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", key, err)
	}
	return value, nil
}

// Delete removes key from the wrapped storage
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
