package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/wevote/dedupe-cli/internal/config"
	"github.com/wevote/dedupe-cli/internal/politician"
)

const defaultSQLitePath = "politicians.db"

func initStore(ctx context.Context) (politician.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		st, err := politician.NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverPostgres:
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("postgres database URL is required (WEVOTE_STORE_DATABASE_URL)")
		}
		st, err := politician.NewPostgres(ctx, cfg.Store.DatabaseURL, &politician.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// withStore opens the configured store, runs fn and closes it.
func withStore(ctx context.Context, fn func(st politician.Store) error) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	return fn(st)
}
