// Package submsqlite stores submissions in a SQLite database file.
package submsqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/eventform/backend/logger"
	"github.com/eventform/backend/subm"
	_ "modernc.org/sqlite"
)

// DSN builds the modernc.org/sqlite data source name for a database file.
func DSN(path string) string {
	return filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

// Open opens the database file at path. The schema is expected to be in
// place already, see package migrate.
func Open(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// one connection serializes reads and writes alike, so writers never
	// race each other into SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	return db, nil
}

type sqliteSubmRepo struct {
	db *sql.DB
}

func NewSqliteSubmRepo(db *sql.DB) *sqliteSubmRepo {
	return &sqliteSubmRepo{db: db}
}

const selectSubmColumns = `SELECT id, user_name, user_age, event_date, submitted_at FROM submissions`

func (r *sqliteSubmRepo) StoreSubm(ctx context.Context, s subm.NewSubm) (subm.Subm, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return subm.Subm{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	submittedAt := s.SubmittedAt.UTC().UnixMicro()
	eventDate := s.EventDate.Format(subm.EventDateLayout)

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO submissions (user_name, user_age, event_date, submitted_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		s.UserName, s.UserAge, eventDate, submittedAt,
	).Scan(&id)
	if err != nil {
		log.Debug("failed to insert submission", "error", err)
		return subm.Subm{}, fmt.Errorf("failed to insert submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return subm.Subm{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("submission stored", "id", id)
	return subm.Subm{
		ID:          id,
		UserName:    s.UserName,
		UserAge:     s.UserAge,
		EventDate:   s.EventDate,
		SubmittedAt: time.UnixMicro(submittedAt).UTC(),
	}, nil
}

func (r *sqliteSubmRepo) GetSubm(ctx context.Context, id int64) (subm.Subm, error) {
	row := r.db.QueryRowContext(ctx, selectSubmColumns+` WHERE id = ?`, id)
	res, err := scanSubm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return subm.Subm{}, fmt.Errorf("submission %d: %w", id, subm.ErrSubmNotFound)
		}
		return subm.Subm{}, fmt.Errorf("failed to query submission: %w", err)
	}
	return res, nil
}

func (r *sqliteSubmRepo) ListSubms(ctx context.Context) ([]subm.Subm, error) {
	rows, err := r.db.QueryContext(ctx, selectSubmColumns+` ORDER BY submitted_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	res := make([]subm.Subm, 0)
	for rows.Next() {
		s, err := scanSubm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		res = append(res, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubm(row scanner) (subm.Subm, error) {
	var (
		res         subm.Subm
		eventDate   string
		submittedAt int64
	)
	if err := row.Scan(&res.ID, &res.UserName, &res.UserAge, &eventDate, &submittedAt); err != nil {
		return subm.Subm{}, err
	}
	date, err := time.Parse(subm.EventDateLayout, eventDate)
	if err != nil {
		return subm.Subm{}, fmt.Errorf("bad event_date %q in row %d: %w", eventDate, res.ID, err)
	}
	res.EventDate = date
	res.SubmittedAt = time.UnixMicro(submittedAt).UTC()
	return res, nil
}
