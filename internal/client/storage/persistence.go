package storage

import (
	"context"
)

// Ключи, под которыми сессия хранится в долговременном хранилище
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

//go:generate moq -out persistence_mock.go . Persistence

// Persistence defines key-value storage for the session tokens on client.
// Values must survive process restart. The store is application scoped:
// isolation between processes is the backend's concern.
type Persistence interface {
	// Set stores value under key, overwriting any prior value
	Set(ctx context.Context, key, value string) error

	// Get returns the value stored under key
	// Returns ErrKeyNotFound if nothing was stored
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
