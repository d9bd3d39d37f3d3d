package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/msomdec/zatigwera/internal/config"
	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/repository/postgres"
	"github.com/msomdec/zatigwera/internal/repository/sqlite"
	"github.com/msomdec/zatigwera/internal/session"
)

// setup loads configuration and installs the default logger. Every command
// starts here.
func setup() (*config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	logger, flush, err := newLogger(level)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	slog.SetDefault(logger)
	return cfg, flush, nil
}

// openDatabase opens and migrates the configured record store.
func openDatabase(ctx context.Context, cfg *config.Config) (domain.Database, error) {
	var (
		db  domain.Database
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = postgres.New(ctx, cfg.Database.URL)
	default:
		db, err = sqlite.New(cfg.Database.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Database.Driver, err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied", "driver", cfg.Database.Driver)
	return db, nil
}

// openSessionStore picks Redis when an address is configured and the
// in-process store otherwise. The returned func releases the store.
func openSessionStore(ctx context.Context, cfg *config.Config) (domain.SessionStore, func(), error) {
	if cfg.Redis.Addr == "" {
		slog.Info("using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil
	}

	client := session.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	store := session.NewRedisStore(client)
	if err := store.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	slog.Info("using redis session store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return store, func() { client.Close() }, nil
}
