package submhttp

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eventform/backend/subm"
	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

type SubmSrvcClient interface {
	CreateSubm(ctx context.Context, p subm.CreateSubmParams) (subm.Subm, error)
	GetSubm(ctx context.Context, id int64) (subm.Subm, error)
	ListSubms(ctx context.Context) ([]subm.Subm, error)
}

type SubmHttpHandler struct {
	submSrvc SubmSrvcClient

	// submissions are immutable, so single records stay cached for
	// submCacheTTL; the list is kept for listCacheTTL and dropped on create
	submCache    *cache.Cache
	listCacheTTL time.Duration
	// listGen is bumped by every create; a list read only caches its result
	// if no create happened while it was querying. listMu makes the
	// compare-and-set and the bump-and-drop atomic with respect to each other.
	listGen atomic.Uint64
	listMu  sync.Mutex
	sfGroup singleflight.Group
}

const submCacheTTL = time.Minute

func NewSubmHttpHandler(submSrvc SubmSrvcClient, listCacheTTL time.Duration) *SubmHttpHandler {
	return &SubmHttpHandler{
		submSrvc:     submSrvc,
		submCache:    cache.New(submCacheTTL, 5*time.Minute),
		listCacheTTL: listCacheTTL,
		// singleflight.Group doesn't need initialization
	}
}

func (h *SubmHttpHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/submit", h.PostSubm)
	r.Get("/api/submissions", h.GetSubmList)
	r.Get("/api/submission/{id}", h.GetSubm)
}

// dropListCache invalidates the cached list and any list query in flight.
func (h *SubmHttpHandler) dropListCache() {
	h.listMu.Lock()
	defer h.listMu.Unlock()
	h.listGen.Add(1)
	h.submCache.Delete(submListCacheKey)
}

// cacheList stores list unless a create happened after gen was read.
func (h *SubmHttpHandler) cacheList(gen uint64, list []Subm) {
	h.listMu.Lock()
	defer h.listMu.Unlock()
	if h.listGen.Load() != gen {
		return
	}
	h.submCache.Set(submListCacheKey, list, h.listCacheTTL)
}
