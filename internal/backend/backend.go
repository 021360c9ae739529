// Package backend builds the ledger record store and the community store
// selected by configuration.
package backend

import (
	"context"
	"fmt"

	"dauvest/internal/config"
	"dauvest/internal/log"
	"dauvest/internal/social"
	socialmem "dauvest/internal/social/memory"
	"dauvest/internal/social/postgres"
	"dauvest/internal/storage"
)

// BackendType names a storage implementation.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

// CleanupFunc releases a backend's resources.
type CleanupFunc func() error

// PingFunc reports whether a backend is reachable.
type PingFunc func(ctx context.Context) error

type Config struct {
	Ledger       BackendType
	SQLiteDBPath string

	Social      BackendType
	DatabaseURL string
}

// LedgerResult is the durable record store behind the ledger.
type LedgerResult struct {
	KV      storage.KV
	Ping    PingFunc
	Cleanup CleanupFunc
}

// SocialResult is the community store the sync engine talks to.
type SocialResult struct {
	Store   social.RemoteStore
	Ping    PingFunc
	Cleanup CleanupFunc
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	cfg := Config{
		Ledger:       BackendType(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		Social:       BackendType(appConfig.SocialBackend),
		DatabaseURL:  appConfig.DatabaseURL,
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Ledger {
	case MemoryBackend:
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	default:
		return fmt.Errorf("invalid ledger backend: %s", c.Ledger)
	}

	switch c.Social {
	case MemoryBackend:
	case PostgresBackend:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for postgres backend")
		}
	default:
		return fmt.Errorf("invalid social backend: %s", c.Social)
	}
	return nil
}

type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateLedger opens the record store for the transactions and goals ledgers.
func (f *Factory) CreateLedger(ctx context.Context, cfg Config) (*LedgerResult, error) {
	switch cfg.Ledger {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite ledger backend", "db_path", cfg.SQLiteDBPath)
		return &LedgerResult{KV: repo, Ping: repo.Ping, Cleanup: repo.Close}, nil

	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory ledger backend")
		return &LedgerResult{
			KV:      storage.NewMemoryKV(),
			Ping:    func(context.Context) error { return nil },
			Cleanup: func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s", cfg.Ledger)
	}
}

// CreateSocial connects the community store.
func (f *Factory) CreateSocial(ctx context.Context, cfg Config) (*SocialResult, error) {
	switch cfg.Social {
	case PostgresBackend:
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres community store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized postgres community backend")
		return &SocialResult{
			Store: store,
			Ping:  store.Ping,
			Cleanup: func() error {
				store.Close()
				return nil
			},
		}, nil

	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory community backend")
		return &SocialResult{
			Store:   socialmem.New(),
			Ping:    func(context.Context) error { return nil },
			Cleanup: func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported social backend: %s", cfg.Social)
	}
}
