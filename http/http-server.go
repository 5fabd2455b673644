package http

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/eventform/backend/httpjson"
	"github.com/eventform/backend/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RouteRegistrar mounts a group of API routes on the router.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type Options struct {
	Env             string
	Version         string
	LogLevel        slog.Level
	JSONLogs        bool
	CorsOrigins     []string
	ShutdownTimeout time.Duration
	StatsInterval   time.Duration
	// Static is served at the root for every path no API route claims.
	Static fs.FS
}

type HttpServer struct {
	router *chi.Mux
	log    *slog.Logger
	stats  *statsLogger
	opts   Options
}

func NewHttpServer(opts Options, handlers ...RouteRegistrar) *HttpServer {
	router := chi.NewRouter()

	reqLogger := httplog.NewLogger("subm", httplog.Options{
		LogLevel:         opts.LogLevel,
		JSON:             opts.JSONLogs,
		Concise:          true,
		RequestHeaders:   false,
		MessageFieldName: "message",
		Tags: map[string]string{
			"version": opts.Version,
			"env":     opts.Env,
		},
	})

	server := &HttpServer{
		router: router,
		log:    reqLogger.Logger,
		stats:  newStatsLogger(reqLogger.Logger, opts.StatsInterval),
		opts:   opts,
	}

	router.Use(middleware.Recoverer)
	router.Use(requestIDMiddleware(reqLogger.Logger))
	router.Use(httplog.RequestLogger(reqLogger))
	router.Use(server.stats.middleware)

	origins := opts.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         3000,
	}))

	server.routes(handlers)

	return server
}

func (httpserver *HttpServer) routes(handlers []RouteRegistrar) {
	r := httpserver.router
	r.Get("/api/health", httpserver.health)
	for _, h := range handlers {
		h.RegisterRoutes(r)
	}
	if httpserver.opts.Static != nil {
		r.Handle("/*", http.FileServer(http.FS(httpserver.opts.Static)))
	}
}

func (httpserver *HttpServer) health(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteSuccessJson(w, map[string]string{"status": "healthy"})
}

func (httpserver *HttpServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpserver.router.ServeHTTP(w, r)
}

// Start serves on address until ctx is cancelled and then drains in-flight
// requests for at most ShutdownTimeout.
func (httpserver *HttpServer) Start(ctx context.Context, address string) error {
	srv := httpserver.newServer(address)

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go httpserver.stats.run(statsCtx)

	serveErr := make(chan error, 1)
	go func() {
		httpserver.log.Info("starting server", "address", address)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		timeout := httpserver.opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpserver.log.Info("shutting down server", "timeout", timeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		httpserver.stats.flush()
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
)

func (httpserver *HttpServer) newServer(address string) *http.Server {
	return &http.Server{
		Addr:              address,
		Handler:           httpserver.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

func requestIDMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := logger.WithLogger(r.Context(), base)
			ctx = logger.WithRequestID(ctx, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}
