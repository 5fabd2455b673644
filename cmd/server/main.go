package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eventform/backend/conf"
	"github.com/eventform/backend/http"
	"github.com/eventform/backend/migrate"
	"github.com/eventform/backend/subm"
	"github.com/eventform/backend/subm/submhttp"
	"github.com/eventform/backend/web"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Usage:   "Event submission backend",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a TOML config file",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address, overrides config",
			},
			&cli.StringFlag{
				Name:  "db-driver",
				Usage: "store backend: sqlite or postgres",
			},
			&cli.StringFlag{
				Name:  "db-path",
				Usage: "sqlite database file",
			},
			&cli.BoolFlag{
				Name:  "skip-migrations",
				Usage: "do not apply schema migrations on startup",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Manage the database schema",
				Commands: []*cli.Command{
					{
						Name:  "up",
						Usage: "Apply all pending migrations",
						Action: func(ctx context.Context, c *cli.Command) error {
							return withMigrationTarget(ctx, c, migrate.Up)
						},
					},
					{
						Name:  "down",
						Usage: "Roll back the latest migration",
						Action: func(ctx context.Context, c *cli.Command) error {
							return withMigrationTarget(ctx, c, migrate.Down)
						},
					},
					{
						Name:  "version",
						Usage: "Print the current schema version",
						Action: func(ctx context.Context, c *cli.Command) error {
							return withMigrationTarget(ctx, c, func(dialect migrate.Dialect, dsn string) error {
								v, dirty, err := migrate.Version(dialect, dsn)
								if err != nil {
									return err
								}
								fmt.Printf("version=%d dirty=%t\n", v, dirty)
								return nil
							})
						},
					},
				},
			},
		},
	}
}

// loadConfig applies CLI flags on top of the file and environment config.
func loadConfig(c *cli.Command) (conf.Config, error) {
	cfg, err := conf.Load(c.String("config"))
	if err != nil {
		return conf.Config{}, err
	}
	if c.IsSet("addr") {
		cfg.Addr = c.String("addr")
	}
	if c.IsSet("db-driver") {
		cfg.DbDriver = c.String("db-driver")
	}
	if c.IsSet("db-path") {
		cfg.SqlitePath = c.String("db-path")
	}
	if c.IsSet("skip-migrations") {
		cfg.SkipMigrations = c.Bool("skip-migrations")
	}
	if err := cfg.Validate(); err != nil {
		return conf.Config{}, err
	}
	return cfg, nil
}

func serve(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(newLogHandler(cfg)))
	log := slog.Default()

	repo, closeRepo, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	submSrvc := subm.NewSubmSrvc(repo)
	submHandler := submhttp.NewSubmHttpHandler(submSrvc, cfg.ListCacheTTL.Duration)

	server := http.NewHttpServer(http.Options{
		Env:             cfg.Env,
		Version:         version,
		LogLevel:        cfg.LogLevel,
		JSONLogs:        cfg.Env == "prod",
		CorsOrigins:     cfg.CorsOrigins,
		ShutdownTimeout: cfg.ShutdownTimeout.Duration,
		Static:          web.Static(),
	}, submHandler)

	log.Info("store ready", "driver", cfg.DbDriver)
	if err := server.Start(ctx, cfg.Addr); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func newLogHandler(cfg conf.Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.Env == "prod" {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.NewTextHandler(os.Stdout, opts)
}
