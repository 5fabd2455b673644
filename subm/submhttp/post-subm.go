package submhttp

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/eventform/backend/httpjson"
	"github.com/eventform/backend/logger"
	"github.com/eventform/backend/srvcerror"
	"github.com/eventform/backend/subm"
)

const maxRequestBodyBytes = 1 << 20

const ErrCodeInvalidJsonBody = "invalid_json_body"

func newErrInvalidJsonBody(err error) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidJsonBody,
		"Invalid JSON body",
	).SetHttpStatusCode(http.StatusBadRequest).SetDebug(err)
}

type postSubmRequest struct {
	UserName  string          `json:"user_name"`
	UserAge   json.RawMessage `json:"user_age"`
	EventDate string          `json:"event_date"`
}

func (h *SubmHttpHandler) PostSubm(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var request postSubmRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(&request); err != nil {
		httpjson.HandleError(log, w, newErrInvalidJsonBody(err))
		return
	}

	log.Info("post subm request",
		"event_date", request.EventDate,
	)

	created, err := h.submSrvc.CreateSubm(r.Context(), subm.CreateSubmParams{
		UserName:  request.UserName,
		UserAge:   ageText(request.UserAge),
		EventDate: request.EventDate,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	h.dropListCache()

	httpjson.WriteJson(w, http.StatusCreated, mapSubm(created))
}

// ageText turns the raw user_age value into text for validation. JSON
// strings are unquoted, null becomes empty, integral numbers such as 34.0
// become "34" and anything else is passed through verbatim so that
// validation can reject it.
func ageText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(trimmed, &n); err == nil &&
		n == math.Trunc(n) && math.Abs(n) <= maxIntegralAge {
		return strconv.FormatInt(int64(n), 10)
	}
	return string(trimmed)
}

// maxIntegralAge bounds float-to-int conversion; range checks happen later.
const maxIntegralAge = 1 << 53
