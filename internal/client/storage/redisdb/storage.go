// Package redisdb keeps the session tokens in Redis so that every process
// of the application pointed at the same instance shares one session.
package redisdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iudanet/sessionkeeper/internal/client/storage"
)

// DefaultKeyPrefix is prepended to every key
const DefaultKeyPrefix = "sessionkeeper:"

// Config for Redis-backed storage
type Config struct {
	// Addr like "localhost:6379"
	Addr string
	// KeyPrefix for all keys
	KeyPrefix string
	Password  string
	DB        int
}

// Storage represents Redis storage implementation for client session
type Storage struct {
	client    *redis.Client
	keyPrefix string
}

var _ storage.Persistence = (*Storage)(nil)

// New connects to Redis and checks the connection
func New(ctx context.Context, cfg Config) (*Storage, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Storage{client: client, keyPrefix: prefix}, nil
}

// Close closes the Redis client
func (s *Storage) Close() error { return s.client.Close() }

func (s *Storage) key(k string) string { return s.keyPrefix + k }

// Set stores value under key without expiration
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Get retrieves value stored under key
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrKeyNotFound
		}
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// Delete removes key, missing keys are ignored
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}
