package subm

import (
	"fmt"
	"net/http"

	"github.com/eventform/backend/srvcerror"
)

const ErrCodeMissingRequiredFields = "missing_required_fields"

func newErrMissingRequiredFields() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeMissingRequiredFields,
		"Missing required fields",
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeInvalidAge = "invalid_age"

func newErrAgeNotNumber() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidAge,
		"Age must be a valid number",
	).SetHttpStatusCode(http.StatusBadRequest)
}

func newErrAgeOutOfRange(minAge, maxAge int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidAge,
		fmt.Sprintf("Age must be between %d and %d", minAge, maxAge),
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeInvalidDate = "invalid_date"

func newErrInvalidDate() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidDate,
		"Invalid date format. Use YYYY-MM-DD",
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeUserNameTooLong = "user_name_too_long"

func newErrUserNameTooLong(maxLength int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeUserNameTooLong,
		fmt.Sprintf("Name must be at most %d characters long", maxLength),
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeSubmNotFound = "submission_not_found"

func newErrSubmNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSubmNotFound,
		"Submission not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

// NewErrSubmNotFound is used by transports that reject an id before it
// reaches the service, e.g. a path segment that is not a number.
func NewErrSubmNotFound() *srvcerror.Error {
	return newErrSubmNotFound()
}
