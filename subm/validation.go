package subm

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinUserAge        = 0
	MaxUserAge        = 150
	MaxUserNameLength = 100

	EventDateLayout = "2006-01-02"
)

// CreateSubmParams holds the fields as the client sent them. UserAge is the
// textual form of the age so that both JSON numbers and numeric strings are
// accepted.
type CreateSubmParams struct {
	UserName  string
	UserAge   string
	EventDate string
}

// validate checks presence, then age, then date, then name length.
func (p CreateSubmParams) validate() (NewSubm, error) {
	name := strings.TrimSpace(p.UserName)
	ageText := strings.TrimSpace(p.UserAge)
	if name == "" || ageText == "" || p.EventDate == "" {
		return NewSubm{}, newErrMissingRequiredFields()
	}

	age, err := strconv.Atoi(ageText)
	if err != nil {
		return NewSubm{}, newErrAgeNotNumber().SetDebug(err)
	}
	if age < MinUserAge || age > MaxUserAge {
		return NewSubm{}, newErrAgeOutOfRange(MinUserAge, MaxUserAge)
	}

	eventDate, err := time.Parse(EventDateLayout, p.EventDate)
	if err != nil {
		return NewSubm{}, newErrInvalidDate().SetDebug(err)
	}

	if utf8.RuneCountInString(name) > MaxUserNameLength {
		return NewSubm{}, newErrUserNameTooLong(MaxUserNameLength)
	}

	return NewSubm{
		UserName:  name,
		UserAge:   age,
		EventDate: eventDate,
	}, nil
}
