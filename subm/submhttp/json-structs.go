package submhttp

import (
	"github.com/eventform/backend/subm"
)

const submittedAtLayout = "2006-01-02 15:04:05"

type Subm struct {
	ID          int64  `json:"id"`
	UserName    string `json:"user_name"`
	UserAge     int    `json:"user_age"`
	EventDate   string `json:"event_date"`
	SubmittedAt string `json:"submitted_at"`
}

func mapSubm(s subm.Subm) Subm {
	return Subm{
		ID:          s.ID,
		UserName:    s.UserName,
		UserAge:     s.UserAge,
		EventDate:   s.EventDate.Format(subm.EventDateLayout),
		SubmittedAt: s.SubmittedAt.UTC().Format(submittedAtLayout),
	}
}

func mapSubmList(subms []subm.Subm) []Subm {
	res := make([]Subm, 0, len(subms))
	for _, s := range subms {
		res = append(res, mapSubm(s))
	}
	return res
}
