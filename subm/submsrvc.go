package subm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventform/backend/logger"
)

type SubmSrvc struct {
	repo SubmRepo
	now  func() time.Time
}

func NewSubmSrvc(repo SubmRepo) *SubmSrvc {
	return &SubmSrvc{
		repo: repo,
		now:  time.Now,
	}
}

// CreateSubm validates p, stamps the submission time and stores it.
func (s *SubmSrvc) CreateSubm(ctx context.Context, p CreateSubmParams) (Subm, error) {
	log := logger.FromContext(ctx)

	newSubm, err := p.validate()
	if err != nil {
		log.Debug("submission rejected", "error", err)
		return Subm{}, err
	}
	newSubm.SubmittedAt = s.now().UTC()

	stored, err := s.repo.StoreSubm(ctx, newSubm)
	if err != nil {
		return Subm{}, fmt.Errorf("failed to store submission: %w", err)
	}

	log.Info("submission created", "id", stored.ID, "event_date", stored.EventDate.Format(EventDateLayout))
	return stored, nil
}

func (s *SubmSrvc) GetSubm(ctx context.Context, id int64) (Subm, error) {
	res, err := s.repo.GetSubm(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSubmNotFound) {
			return Subm{}, newErrSubmNotFound().SetDebug(err)
		}
		return Subm{}, fmt.Errorf("failed to get submission: %w", err)
	}
	return res, nil
}

func (s *SubmSrvc) ListSubms(ctx context.Context) ([]Subm, error) {
	subms, err := s.repo.ListSubms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	if subms == nil {
		subms = []Subm{}
	}
	return subms, nil
}
