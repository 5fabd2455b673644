package submhttp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/eventform/backend/httpjson"
	"github.com/eventform/backend/subm"
	"github.com/go-chi/chi/v5"
)

const submGetCacheKeyPrefix = "subm_get:"

func submGetCacheKey(id int64) string {
	return fmt.Sprintf("%s%d", submGetCacheKeyPrefix, id)
}

// GetSubm returns a submission by its numeric id
func (h *SubmHttpHandler) GetSubm(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id < 0 {
		httpjson.HandleErrorWithContext(r, w, subm.NewErrSubmNotFound().SetDebug(err))
		return
	}

	cacheKey := submGetCacheKey(id)
	if cached, found := h.submCache.Get(cacheKey); found {
		if s, ok := cached.(Subm); ok {
			httpjson.WriteSuccessJson(w, s)
			return
		}
	}

	result, err, _ := h.sfGroup.Do(cacheKey, func() (interface{}, error) {
		s, err := h.submSrvc.GetSubm(context.WithoutCancel(r.Context()), id)
		if err != nil {
			return nil, err
		}
		response := mapSubm(s)
		h.submCache.Set(cacheKey, response, 0) // default expiration
		return response, nil
	})
	if err != nil {
		httpjson.HandleErrorWithContext(r, w, err)
		return
	}

	response, _ := result.(Subm)
	httpjson.WriteSuccessJson(w, response)
}
