// Package migrate holds the versioned schema for every supported store and
// applies it with golang-migrate.
package migrate

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gomigrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

type Dialect string

const (
	DialectSqlite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// driverName is the database/sql driver registered for the dialect.
func (d Dialect) driverName() (string, error) {
	switch d {
	case DialectSqlite:
		return "sqlite", nil
	case DialectPostgres:
		return "pgx", nil
	}
	return "", fmt.Errorf("unknown dialect %q", d)
}

// Up applies all pending migrations. An up-to-date schema is not an error.
func Up(dialect Dialect, dsn string) error {
	m, err := newMigrator(dialect, dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil && !errors.Is(err, gomigrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(dialect Dialect, dsn string) error {
	m, err := newMigrator(dialect, dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Steps(-1); err != nil && !errors.Is(err, gomigrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Version reports the applied schema version; 0 means nothing is applied.
func Version(dialect Dialect, dsn string) (version uint, dirty bool, err error) {
	m, err := newMigrator(dialect, dsn)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(m)

	version, dirty, err = m.Version()
	if errors.Is(err, gomigrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// newMigrator opens a dedicated connection for dsn. Closing the migrator
// closes that connection.
func newMigrator(dialect Dialect, dsn string) (*gomigrate.Migrate, error) {
	driverName, err := dialect.driverName()
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(FS, string(dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	var dbDriver database.Driver
	switch dialect {
	case DialectSqlite:
		dbDriver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case DialectPostgres:
		dbDriver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare %s migration driver: %w", dialect, err)
	}

	m, err := gomigrate.NewWithInstance("iofs", src, string(dialect), dbDriver)
	if err != nil {
		_ = dbDriver.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	m.Log = migrateLogger{log: slog.Default().With("dialect", string(dialect))}
	return m, nil
}

func closeMigrator(m *gomigrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		slog.Default().Warn("failed to close migrator", "source_error", srcErr, "db_error", dbErr)
	}
}

type migrateLogger struct {
	log *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return false }
