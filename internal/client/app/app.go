// Package app wires configuration into a ready session store.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iudanet/sessionkeeper/internal/client/api"
	"github.com/iudanet/sessionkeeper/internal/client/config"
	"github.com/iudanet/sessionkeeper/internal/client/session"
	"github.com/iudanet/sessionkeeper/internal/client/storage"
	"github.com/iudanet/sessionkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/sessionkeeper/internal/client/storage/redisdb"
	"github.com/iudanet/sessionkeeper/internal/client/storage/sealed"
	"github.com/iudanet/sessionkeeper/internal/client/storage/sqlite"
)

// App holds the process-wide session store and the resources behind it
type App struct {
	Store   *session.Store
	closers []func() error
}

// New opens storage, restores the persisted session and returns the App.
// Close must be called on shutdown.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	persistence, err := a.openStorage(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	profiles := api.NewClient(cfg.Server,
		api.WithProfilePath(cfg.ProfilePath),
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithHTTPTransport(api.NewLoggingTransport(http.DefaultTransport, logger)),
	)

	a.Store = session.New(persistence, profiles, session.WithLogger(logger))

	// Восстанавливаем сессию предыдущего процесса
	if err := a.Store.LoadTokens(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config) (storage.Persistence, error) {
	var persistence storage.Persistence

	switch cfg.Storage.Driver {
	case config.DriverBolt:
		s, err := boltdb.New(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		persistence = s
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		persistence = s
	case config.DriverRedis:
		s, err := redisdb.New(ctx, redisdb.Config{
			Addr:      cfg.Redis.Addr,
			KeyPrefix: cfg.Redis.Prefix,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		persistence = s
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Storage.Passphrase == "" {
		return persistence, nil
	}

	s, err := sealed.New(ctx, persistence, cfg.Storage.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to open sealed storage: %w", err)
	}
	return s, nil
}

// Close releases storage
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
