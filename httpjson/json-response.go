package httpjson

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/eventform/backend/logger"
	"github.com/eventform/backend/srvcerror"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func WriteJson(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func WriteSuccessJson(w http.ResponseWriter, data any) {
	WriteJson(w, http.StatusOK, data)
}

func WriteErrorJson(w http.ResponseWriter, errMsg string, statusCode int, errCode string) {
	WriteJson(w, statusCode, ErrorResponse{
		Error: errMsg,
		Code:  errCode,
	})
}

// HandleError writes err as a JSON error body. Service errors keep their
// status and code; anything else is a 500 carrying the raw error message.
func HandleError(logger *slog.Logger, w http.ResponseWriter, err error) {
	srvcErr := &srvcerror.Error{}
	if errors.As(err, &srvcErr) {
		if srvcErr.DebugInfo() != nil {
			logger.Warn("service error", "error", err, "debug", srvcErr.DebugInfo())
		} else {
			logger.Warn("service error", "error", err)
		}
		if srvcErr.HttpStatusCode() == http.StatusInternalServerError {
			logger.Error("internal server error", "error", err)
		}
		WriteErrorJson(w, srvcErr.Error(), srvcErr.HttpStatusCode(), srvcErr.ErrorCode())
		return
	}

	logger.Error("internal server error", "error", err)
	WriteErrorJson(w,
		err.Error(),
		http.StatusInternalServerError,
		srvcerror.ErrCodeInternalServerError)
}

func HandleErrorWithContext(r *http.Request, w http.ResponseWriter, err error) {
	HandleError(logger.FromContext(r.Context()), w, err)
}
