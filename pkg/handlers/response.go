package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
)

type errorResponse struct {
	Error string `json:"error"`
}

var badRequestErrors = []error{
	apperror.ErrGameFinished,
	apperror.ErrCellOccupied,
	apperror.ErrCellEmpty,
	apperror.ErrInvalidCell,
	apperror.ErrInsufficientPoints,
	apperror.ErrBoardMismatch,
	apperror.ErrModeMismatch,
	apperror.ErrInvalidGameMode,
	apperror.ErrInvalidGame,
	apperror.ErrNoAvailableMoves,
}

// StatusOf maps an application error to the HTTP status reported to clients.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperror.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError answers with the mapped status. Internal errors are logged and not echoed.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusOf(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		message = http.StatusText(status)
	}

	WriteJSON(w, status, errorResponse{Error: message})
}

// BearerToken extracts the token from the Authorization header, or from the token
// query parameter when allowQuery is set (browsers cannot set headers on WebSocket).
func BearerToken(r *http.Request, allowQuery bool) (string, bool) {
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token), true
	}

	if allowQuery {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, true
		}
	}

	return "", false
}
