package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

type endpointStats struct {
	count     int
	errors    int
	totalTime time.Duration
}

// statsLogger aggregates per-route request counts and latencies and logs
// them once per flush interval.
type statsLogger struct {
	log           *slog.Logger
	stats         map[string]*endpointStats
	mu            sync.Mutex
	flushInterval time.Duration
}

func newStatsLogger(log *slog.Logger, flushInterval time.Duration) *statsLogger {
	if flushInterval <= 0 {
		flushInterval = time.Minute
	}
	return &statsLogger{
		log:           log,
		stats:         make(map[string]*endpointStats),
		flushInterval: flushInterval,
	}
}

func (sl *statsLogger) run(ctx context.Context) {
	ticker := time.NewTicker(sl.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sl.flush()
		}
	}
}

func (sl *statsLogger) flush() {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	for endpoint, stats := range sl.stats {
		if stats.count == 0 {
			continue
		}
		avgTimeMs := float64(stats.totalTime.Microseconds()) / float64(stats.count) / 1000.0
		sl.log.Info("endpoint stats",
			"endpoint", endpoint,
			"count", stats.count,
			"errors", stats.errors,
			"avg_time_ms", fmt.Sprintf("%.2f", avgTimeMs),
			"period", sl.flushInterval,
		)
		delete(sl.stats, endpoint)
	}
}

func (sl *statsLogger) snapshot(endpoint string) (count, errors int) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if s, ok := sl.stats[endpoint]; ok {
		return s.count, s.errors
	}
	return 0, 0
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (sl *statsLogger) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)

		// route pattern keeps /api/submission/{id} as a single bucket
		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		endpoint := fmt.Sprintf("%s %s", r.Method, pattern)

		sl.mu.Lock()
		if _, exists := sl.stats[endpoint]; !exists {
			sl.stats[endpoint] = &endpointStats{}
		}
		sl.stats[endpoint].count++
		if rec.status >= http.StatusInternalServerError {
			sl.stats[endpoint].errors++
		}
		sl.stats[endpoint].totalTime += duration
		sl.mu.Unlock()
	})
}
