package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/gamehub-backend/internal/arcade"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/metrics"
	"github.com/rocketscienceinc/gamehub-backend/pkg/handlers"
)

const shutdownTimeout = 5 * time.Second

type identityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*entity.User, error)
}

type scoreSubmitter interface {
	Submit(ctx context.Context, gameID string, user entity.User, score int64) error
}

type Option func(*Server)

// WithRandom replaces the hazard randomness of every new session.
func WithRandom(random arcade.Random) Option {
	return func(server *Server) {
		server.random = random
	}
}

// WithMetrics tracks open sessions and final scores.
func WithMetrics(m *metrics.Metrics) Option {
	return func(server *Server) {
		server.metrics = m
	}
}

type Config struct {
	TickInterval time.Duration
	WriteTimeout time.Duration
	PingInterval time.Duration
	Arcade       arcade.Config
}

// Server runs one arcade session per connection, at most one per user.
type Server struct {
	logger   *slog.Logger
	verifier identityVerifier
	scores   scoreSubmitter
	config   Config
	random   arcade.Random
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
	router   *httprouter.Router
	registry *registry

	// baseCtx outlives each upgrade request; sessions stop when it is canceled.
	baseCtx context.Context

	// closing is set under mu before sessions.Wait, so no Add can follow it.
	mu       sync.Mutex
	closing  bool
	sessions sync.WaitGroup
}

func New(logger *slog.Logger, verifier identityVerifier, scores scoreSubmitter, config Config, opts ...Option) *Server {
	server := &Server{
		logger:   logger,
		verifier: verifier,
		scores:   scores,
		config:   config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(*http.Request) bool {
				return true // game clients are served from another origin
			},
		},
		router:   httprouter.New(),
		registry: newRegistry(),
		baseCtx:  context.Background(),
	}

	for _, opt := range opts {
		opt(server)
	}

	server.router.GET("/ping", handlers.PingHandler)
	server.router.GET("/ws/arcade", server.handleArcade)
	server.router.GET("/dragon_ws", server.handleArcade)

	return server
}

// acquire registers a session unless the server is shutting down and
// returns the context the session lives under.
func (that *Server) acquire() (context.Context, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closing || that.baseCtx.Err() != nil {
		return nil, false
	}

	that.sessions.Add(1)

	return that.baseCtx, true
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start serves until ctx is canceled, then closes every session and waits for them.
func (that *Server) Start(ctx context.Context, port string) error {
	that.mu.Lock()
	that.baseCtx = ctx
	that.mu.Unlock()

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	shutdownDone := make(chan struct{})

	go func() {
		defer close(shutdownDone)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("WebSocket server shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-shutdownDone

	that.mu.Lock()
	that.closing = true
	that.mu.Unlock()

	that.sessions.Wait()

	return nil
}
