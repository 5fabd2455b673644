package subm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type inMemRepo struct {
	mu     sync.RWMutex
	subms  map[int64]Subm
	lastID int64
}

// NewInMemRepo returns a SubmRepo kept in process memory. Used by tests.
func NewInMemRepo() *inMemRepo {
	return &inMemRepo{
		subms: make(map[int64]Subm),
	}
}

// StoreSubm implements SubmRepo
func (r *inMemRepo) StoreSubm(ctx context.Context, s NewSubm) (Subm, error) {
	if err := ctx.Err(); err != nil {
		return Subm{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	stored := Subm{
		ID:          r.lastID,
		UserName:    s.UserName,
		UserAge:     s.UserAge,
		EventDate:   s.EventDate,
		SubmittedAt: s.SubmittedAt,
	}
	r.subms[stored.ID] = stored
	return stored, nil
}

// GetSubm implements SubmRepo
func (r *inMemRepo) GetSubm(ctx context.Context, id int64) (Subm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.subms[id]; ok {
		return s, nil
	}
	return Subm{}, fmt.Errorf("submission %d: %w", id, ErrSubmNotFound)
}

// ListSubms implements SubmRepo
func (r *inMemRepo) ListSubms(ctx context.Context) ([]Subm, error) {
	r.mu.RLock()
	res := make([]Subm, 0, len(r.subms))
	for _, s := range r.subms {
		res = append(res, s)
	}
	r.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		if !res[i].SubmittedAt.Equal(res[j].SubmittedAt) {
			return res[i].SubmittedAt.After(res[j].SubmittedAt)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}
