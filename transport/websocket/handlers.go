package websocket

import (
	"context"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/arcade"
	"github.com/rocketscienceinc/gamehub-backend/internal/pkg"
	"github.com/rocketscienceinc/gamehub-backend/pkg/handlers"
)

// handleArcade authenticates the caller before the upgrade, so a rejected
// client gets a plain 401 instead of a socket.
func (that *Server) handleArcade(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := that.logger.With("method", "handleArcade")

	token, ok := handlers.BearerToken(r, true)
	if !ok {
		handlers.WriteError(w, log, fmt.Errorf("missing bearer token: %w", apperror.ErrUnauthorized))
		return
	}

	user, err := that.verifier.Verify(r.Context(), token)
	if err != nil {
		handlers.WriteError(w, log, err)
		return
	}

	baseCtx, ok := that.acquire()
	if !ok {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		that.sessions.Done()
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	sessionID := pkg.GenerateSessionID()
	ctx, cancel := context.WithCancelCause(baseCtx)

	that.registry.replace(user.ID, sessionID, cancel)

	session := &session{
		id:      sessionID,
		user:    *user,
		conn:    conn,
		game:    arcade.New(that.config.Arcade, that.random),
		config:  that.config,
		scores:  that.scores,
		logger:  that.logger.With("sessionID", sessionID, "userID", user.ID),
		input:   make(chan float64, inputBuffer),
		metrics: that.metrics,
	}

	that.metrics.SessionOpened()

	go func() {
		defer that.sessions.Done()
		defer that.metrics.SessionClosed()
		defer that.registry.release(user.ID, sessionID)
		defer cancel(nil)

		session.run(ctx)
	}()
}
