package submhttp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eventform/backend/httpjson"
	"github.com/eventform/backend/logger"
)

const submListCacheKey = "subm_list"

func (h *SubmHttpHandler) GetSubmList(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if h.listCacheTTL > 0 {
		if cached, found := h.submCache.Get(submListCacheKey); found {
			if list, ok := cached.([]Subm); ok {
				httpjson.WriteSuccessJson(w, list)
				return
			}
		}
	}

	// concurrent pollers share one store query, but never one that started
	// before the latest create
	gen := h.listGen.Load()
	flightKey := fmt.Sprintf("%s:%d", submListCacheKey, gen)
	result, err, _ := h.sfGroup.Do(flightKey, func() (interface{}, error) {
		// the flight outlives the request that started it
		subms, err := h.submSrvc.ListSubms(context.WithoutCancel(r.Context()))
		if err != nil {
			return nil, err
		}
		list := mapSubmList(subms)
		if h.listCacheTTL > 0 {
			h.cacheList(gen, list)
		}
		return list, nil
	})
	if err != nil {
		log.Error("failed to list submissions", "error", err)
		httpjson.HandleError(log, w, err)
		return
	}

	list, _ := result.([]Subm)
	log.Debug("returning submission list", "count", len(list))
	httpjson.WriteSuccessJson(w, list)
}
