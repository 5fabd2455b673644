package subm

import (
	"context"
	"errors"
	"time"
)

// Subm is a stored submission. Records are never updated or deleted.
type Subm struct {
	ID          int64
	UserName    string
	UserAge     int
	EventDate   time.Time
	SubmittedAt time.Time
}

// NewSubm is a validated submission that has not been assigned an ID yet.
type NewSubm struct {
	UserName    string
	UserAge     int
	EventDate   time.Time
	SubmittedAt time.Time
}

var ErrSubmNotFound = errors.New("submission not found")

type SubmRepo interface {
	// StoreSubm inserts s in a single transaction and returns the stored row.
	StoreSubm(ctx context.Context, s NewSubm) (Subm, error)
	// GetSubm returns ErrSubmNotFound when no row has the given id.
	GetSubm(ctx context.Context, id int64) (Subm, error)
	// ListSubms returns all rows, newest first.
	ListSubms(ctx context.Context) ([]Subm, error)
}
