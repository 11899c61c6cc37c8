package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/metrics"
	"github.com/rocketscienceinc/gamehub-backend/internal/tictactoe"
	"github.com/rocketscienceinc/gamehub-backend/internal/usecase"
	"github.com/rocketscienceinc/gamehub-backend/pkg/handlers"
)

const (
	maxBodyBytes   = 16 << 10
	degradedHeader = "X-Leaderboard-Degraded"
)

var ErrMalformedRequest = errors.New("malformed request")

type matchManager interface {
	PlayMove(ctx context.Context, user entity.User, claim tictactoe.Claim) (*usecase.MoveResult, error)
	Abandon(ctx context.Context, user entity.User) error
}

type leaderboardService interface {
	GameID(raw string) (string, error)
	Top(ctx context.Context, gameID string, limit int64) ([]entity.RankedEntry, bool)
	Rank(ctx context.Context, gameID, userID string) (*entity.RankedEntry, bool, error)
}

type playRequest struct {
	Board       []string `json:"board"`
	MoveHistory []int    `json:"move_history"`
	GameMode    string   `json:"game_mode"`
	UsedPowerUp bool     `json:"used_power_up"`
	EraseIndex  *int     `json:"erase_index"`
	Cell        *int     `json:"cell"`
}

type playResponse struct {
	Board           entity.Board `json:"board"`
	MoveHistory     []int        `json:"move_history"`
	GameMode        string       `json:"game_mode"`
	Winner          *string      `json:"winner"`
	ScoreIncrement  int          `json:"score_increment"`
	PowerUpUsedByAI bool         `json:"power_up_used_by_ai"`
	AIEraseIndex    *int         `json:"ai_erase_index,omitempty"`
	Points          int64        `json:"points"`
}

type leaderboardRow struct {
	Rank     int64  `json:"rank"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
}

type rankResponse struct {
	Rank  int64 `json:"rank"`
	Score int64 `json:"score"`
}

type Handlers struct {
	logger      *slog.Logger
	matches     matchManager
	leaderboard leaderboardService
	metrics     *metrics.Metrics
}

func NewHandlers(logger *slog.Logger, matches matchManager, leaderboard leaderboardService) *Handlers {
	return &Handlers{
		logger:      logger,
		matches:     matches,
		leaderboard: leaderboard,
	}
}

func (that *Handlers) PlayXandZero(w http.ResponseWriter, r *http.Request, _ httprouter.Params, user *entity.User) {
	log := that.logger.With("method", "PlayXandZero", "userID", user.ID)

	var request playRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {
		handlers.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("%s: %v", ErrMalformedRequest, err)})
		return
	}

	result, err := that.matches.PlayMove(r.Context(), *user, tictactoe.Claim{
		Board:      request.Board,
		Mode:       request.GameMode,
		UsePowerUp: request.UsedPowerUp,
		EraseIndex: request.EraseIndex,
		Cell:       request.Cell,
	})
	if err != nil {
		log.Info("move rejected", "error", err)
		handlers.WriteError(w, log, err)
		return
	}

	response := playResponse{
		Board:           result.Match.Board,
		MoveHistory:     result.Match.History,
		GameMode:        string(result.Match.Mode),
		ScoreIncrement:  result.ScoreIncrement,
		PowerUpUsedByAI: result.PowerUpUsedByAI,
		AIEraseIndex:    result.AIEraseIndex,
		Points:          result.Points,
	}
	if result.Match.Winner != "" {
		response.Winner = &result.Match.Winner
		that.metrics.MatchFinished(string(result.Match.Mode), result.Match.Winner)
	}

	handlers.WriteJSON(w, http.StatusOK, response)
}

func (that *Handlers) AbandonXandZero(w http.ResponseWriter, r *http.Request, _ httprouter.Params, user *entity.User) {
	if err := that.matches.Abandon(r.Context(), *user); err != nil {
		handlers.WriteError(w, that.logger.With("method", "AbandonXandZero"), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Handlers) Leaderboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := that.logger.With("method", "Leaderboard")

	gameID, err := that.leaderboard.GameID(r.URL.Query().Get("game"))
	if err != nil {
		handlers.WriteError(w, log, err)
		return
	}

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.ParseInt(raw, 10, 64); err != nil {
			handlers.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
			return
		}
	}

	entries, degraded := that.leaderboard.Top(r.Context(), gameID, limit)
	if degraded {
		w.Header().Set(degradedHeader, "true")
	}

	rows := make([]leaderboardRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, leaderboardRow{Rank: entry.Rank, Username: entry.Username, Score: entry.BestScore})
	}

	handlers.WriteJSON(w, http.StatusOK, rows)
}

func (that *Handlers) MyRank(w http.ResponseWriter, r *http.Request, _ httprouter.Params, user *entity.User) {
	log := that.logger.With("method", "MyRank", "userID", user.ID)

	gameID, err := that.leaderboard.GameID(r.URL.Query().Get("game"))
	if err != nil {
		handlers.WriteError(w, log, err)
		return
	}

	ranked, degraded, err := that.leaderboard.Rank(r.Context(), gameID, user.ID)
	if errors.Is(err, apperror.ErrNotFound) {
		handlers.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no score recorded for this game"})
		return
	}
	if err != nil {
		handlers.WriteError(w, log, err)
		return
	}

	if degraded {
		w.Header().Set(degradedHeader, "true")
	}

	handlers.WriteJSON(w, http.StatusOK, rankResponse{Rank: ranked.Rank, Score: ranked.BestScore})
}
