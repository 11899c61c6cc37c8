package rest

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/pkg/handlers"
)

type identityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*entity.User, error)
}

// userHandle is an httprouter handle that runs only for a verified user.
type userHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *entity.User)

// requireUser rejects the request with 401 before next runs unless the bearer token verifies.
func (that *Server) requireUser(next userHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		log := that.logger.With("method", "requireUser", "path", r.URL.Path)

		token, ok := handlers.BearerToken(r, false)
		if !ok {
			handlers.WriteError(w, log, apperror.ErrUnauthorized)
			return
		}

		user, err := that.verifier.Verify(r.Context(), token)
		if err != nil {
			log.Debug("request rejected", "error", err)
			handlers.WriteError(w, log, err)
			return
		}

		next(w, r, ps, user)
	}
}
