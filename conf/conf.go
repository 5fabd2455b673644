package conf

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	DbDriverSqlite   = "sqlite"
	DbDriverPostgres = "postgres"
)

// Duration accepts "1s"-style values from both TOML and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Addr            string     `toml:"addr" env:"SUBM_ADDR"`
	Env             string     `toml:"env" env:"SUBM_ENV"`
	LogLevel        slog.Level `toml:"log_level" env:"SUBM_LOG_LEVEL"`
	DbDriver        string     `toml:"db_driver" env:"SUBM_DB_DRIVER"`
	SqlitePath      string     `toml:"sqlite_path" env:"SUBM_SQLITE_PATH"`
	SkipMigrations  bool       `toml:"skip_migrations" env:"SUBM_SKIP_MIGRATIONS"`
	CorsOrigins     []string   `toml:"cors_origins" env:"SUBM_CORS_ORIGINS" envSeparator:","`
	ListCacheTTL    Duration   `toml:"list_cache_ttl" env:"SUBM_LIST_CACHE_TTL"`
	ShutdownTimeout Duration   `toml:"shutdown_timeout" env:"SUBM_SHUTDOWN_TIMEOUT"`
}

func Default() Config {
	return Config{
		Addr:            "0.0.0.0:5000",
		Env:             "dev",
		LogLevel:        slog.LevelInfo,
		DbDriver:        DbDriverSqlite,
		SqlitePath:      "/data/submissions.db",
		CorsOrigins:     []string{"*"},
		ListCacheTTL:    Duration{time.Second},
		ShutdownTimeout: Duration{10 * time.Second},
	}
}

// Load builds the configuration from defaults, then the TOML file at
// tomlPath (skipped when empty), then environment variables. A .env file in
// the working directory is loaded into the environment first if present.
func Load(tomlPath string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	if tomlPath != "" {
		data, err := os.ReadFile(tomlPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", tomlPath, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DbDriver {
	case DbDriverSqlite:
		if c.SqlitePath == "" {
			return errors.New("sqlite_path must be set for the sqlite driver")
		}
	case DbDriverPostgres:
	default:
		return fmt.Errorf("unknown db_driver %q, expected %q or %q", c.DbDriver, DbDriverSqlite, DbDriverPostgres)
	}
	if c.Addr == "" {
		return errors.New("addr must be set")
	}
	if c.ListCacheTTL.Duration < 0 {
		return errors.New("list_cache_ttl must not be negative")
	}
	return nil
}
