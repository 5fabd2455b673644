package submpgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventform/backend/logger"
	"github.com/eventform/backend/subm"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgSubmRepo struct {
	pool *pgxpool.Pool
}

func NewPgSubmRepo(pool *pgxpool.Pool) *pgSubmRepo {
	return &pgSubmRepo{pool: pool}
}

func (r *pgSubmRepo) StoreSubm(ctx context.Context, s subm.NewSubm) (subm.Subm, error) {
	log := logger.FromContext(ctx)

	// Start a transaction
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Debug("failed to begin transaction", "error", err)
		return subm.Subm{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO submissions (user_name, user_age, event_date, submitted_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_name, user_age, event_date, submitted_at
	`
	res, err := scanSubm(tx.QueryRow(ctx, insertQuery,
		s.UserName,
		s.UserAge,
		s.EventDate,
		s.SubmittedAt,
	))
	if err != nil {
		log.Debug("failed to insert submission", "error", err)
		return subm.Subm{}, fmt.Errorf("failed to insert submission: %w", err)
	}

	// Commit the transaction
	if err := tx.Commit(ctx); err != nil {
		log.Debug("failed to commit transaction", "error", err)
		return subm.Subm{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("submission stored successfully", "id", res.ID)
	return res, nil
}

func (r *pgSubmRepo) GetSubm(ctx context.Context, id int64) (subm.Subm, error) {
	query := `
		SELECT id, user_name, user_age, event_date, submitted_at
		FROM submissions
		WHERE id = $1
	`
	res, err := scanSubm(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subm.Subm{}, fmt.Errorf("submission %d: %w", id, subm.ErrSubmNotFound)
		}
		return subm.Subm{}, fmt.Errorf("failed to query submission: %w", err)
	}
	return res, nil
}

func (r *pgSubmRepo) ListSubms(ctx context.Context) ([]subm.Subm, error) {
	query := `
		SELECT id, user_name, user_age, event_date, submitted_at
		FROM submissions
		ORDER BY submitted_at DESC, id DESC
	`
	rows, err := r.pool.Query(ctx, query)
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

func scanSubm(row pgx.Row) (subm.Subm, error) {
	var res subm.Subm
	err := row.Scan(
		&res.ID,
		&res.UserName,
		&res.UserAge,
		&res.EventDate,
		&res.SubmittedAt,
	)
	if err != nil {
		return subm.Subm{}, err
	}
	res.EventDate = res.EventDate.UTC()
	res.SubmittedAt = res.SubmittedAt.UTC()
	return res, nil
}
