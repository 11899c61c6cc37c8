package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/gamehub-backend/internal/metrics"
	"github.com/rocketscienceinc/gamehub-backend/pkg/handlers"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger   *slog.Logger
	verifier identityVerifier
	router   *httprouter.Router
	metrics  *metrics.Metrics
}

type Option func(*Server)

// WithMetrics instruments every route and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(server *Server) {
		server.metrics = m
	}
}

func New(logger *slog.Logger, verifier identityVerifier, h *Handlers, opts ...Option) *Server {
	server := &Server{
		logger:   logger,
		verifier: verifier,
		router:   httprouter.New(),
	}

	for _, opt := range opts {
		opt(server)
	}

	h.metrics = server.metrics

	server.handle(http.MethodGet, "/ping", handlers.PingHandler)
	server.handle(http.MethodPost, "/xandzero/play", server.requireUser(h.PlayXandZero))
	server.handle(http.MethodDelete, "/xandzero/match", server.requireUser(h.AbandonXandZero))
	server.handle(http.MethodGet, "/leaderboard", h.Leaderboard)
	server.handle(http.MethodGet, "/leaderboard/me", server.requireUser(h.MyRank))

	if server.metrics != nil {
		server.router.Handler(http.MethodGet, "/metrics", server.metrics.Handler())
	}

	server.router.GlobalOPTIONS = http.HandlerFunc(preflight)
	server.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, recovered any) {
		logger.Error("recovered from panic", "path", r.URL.Path, "panic", recovered)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	return server
}

func (that *Server) handle(method, path string, handle httprouter.Handle) {
	that.router.Handle(method, path, that.metrics.Instrument(path, handle))
}

func (that *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		that.router.ServeHTTP(w, r)
	})
}

func preflight(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Access-Control-Request-Method") != "" {
		w.Header().Set("Access-Control-Allow-Methods", w.Header().Get("Allow"))
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	}
	w.WriteHeader(http.StatusNoContent)
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("HTTP server shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
