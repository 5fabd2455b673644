package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eventform/backend/conf"
	"github.com/eventform/backend/migrate"
	"github.com/eventform/backend/subm"
	"github.com/eventform/backend/subm/submpgrepo"
	"github.com/eventform/backend/subm/submsqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v3"
)

// migrationTarget resolves the dialect and DSN migrations run against.
func migrationTarget(ctx context.Context, cfg conf.Config) (migrate.Dialect, string, error) {
	switch cfg.DbDriver {
	case conf.DbDriverSqlite:
		if err := os.MkdirAll(filepath.Dir(cfg.SqlitePath), 0o755); err != nil {
			return "", "", fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		return migrate.DialectSqlite, submsqlite.DSN(cfg.SqlitePath), nil
	case conf.DbDriverPostgres:
		connStr, err := conf.GetPgConnStrFromEnv(ctx)
		if err != nil {
			return "", "", err
		}
		return migrate.DialectPostgres, connStr, nil
	}
	return "", "", fmt.Errorf("unknown db driver %q", cfg.DbDriver)
}

func withMigrationTarget(ctx context.Context, c *cli.Command, fn func(migrate.Dialect, string) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	dialect, dsn, err := migrationTarget(ctx, cfg)
	if err != nil {
		return err
	}
	return fn(dialect, dsn)
}

// openRepo migrates (unless disabled) and opens the configured store. The
// returned func releases the underlying connections.
func openRepo(ctx context.Context, cfg conf.Config) (subm.SubmRepo, func(), error) {
	dialect, dsn, err := migrationTarget(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.SkipMigrations {
		if err := migrate.Up(dialect, dsn); err != nil {
			return nil, nil, err
		}
		slog.Info("migrations applied", "dialect", dialect)
	}

	switch dialect {
	case migrate.DialectSqlite:
		db, err := submsqlite.Open(cfg.SqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return submsqlite.NewSqliteSubmRepo(db), func() { _ = db.Close() }, nil
	default:
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping postgres: %w", err)
		}
		return submpgrepo.NewPgSubmRepo(pool), pool.Close, nil
	}
}
