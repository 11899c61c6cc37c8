package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/metrics"
	"github.com/rocketscienceinc/gamehub-backend/internal/tictactoe"
	"github.com/rocketscienceinc/gamehub-backend/internal/usecase"
)

const validToken = "valid-token"

var goku = &entity.User{ID: "u1", Username: "goku"}

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, rawToken string) (*entity.User, error) {
	if rawToken != validToken {
		return nil, apperror.ErrUnauthorized
	}
	return goku, nil
}

type mockMatches struct {
	mock.Mock
}

func (that *mockMatches) PlayMove(ctx context.Context, user entity.User, claim tictactoe.Claim) (*usecase.MoveResult, error) {
	args := that.Called(ctx, user, claim)
	result, _ := args.Get(0).(*usecase.MoveResult)
	return result, args.Error(1)
}

func (that *mockMatches) Abandon(ctx context.Context, user entity.User) error {
	return that.Called(ctx, user).Error(0)
}

type stubLeaderboard struct {
	entries  []entity.RankedEntry
	ranked   *entity.RankedEntry
	rankErr  error
	degraded bool
	limit    int64
}

func (that *stubLeaderboard) GameID(raw string) (string, error) {
	if raw == "" {
		return entity.GameDragonBall, nil
	}
	return raw, entity.ValidateGameID(raw)
}

func (that *stubLeaderboard) Top(_ context.Context, _ string, limit int64) ([]entity.RankedEntry, bool) {
	that.limit = limit
	return that.entries, that.degraded
}

func (that *stubLeaderboard) Rank(context.Context, string, string) (*entity.RankedEntry, bool, error) {
	return that.ranked, that.degraded, that.rankErr
}

func newTestServer(matches matchManager, leaderboard leaderboardService) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(logger, stubVerifier{}, NewHandlers(logger, matches, leaderboard)).Handler()
}

func do(handler http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder
}

func TestPing(t *testing.T) {
	response := do(newTestServer(&mockMatches{}, &stubLeaderboard{}), http.MethodGet, "/ping", "", "")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "pong", response.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	// Given: an instrumented server that answered one ping
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler := New(logger, stubVerifier{}, NewHandlers(logger, &mockMatches{}, &stubLeaderboard{}), WithMetrics(metrics.New())).Handler()

	require.Equal(t, http.StatusOK, do(handler, http.MethodGet, "/ping", "", "").Code)

	// When: metrics are scraped
	response := do(handler, http.MethodGet, "/metrics", "", "")

	// Then: the ping is counted under its route
	require.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), `gamehub_http_requests_total{method="GET",route="/ping",status="200"} 1`)
}

func TestPlayXandZero(t *testing.T) {
	t.Run("Error without token", func(t *testing.T) {
		matches := &mockMatches{}

		response := do(newTestServer(matches, &stubLeaderboard{}), http.MethodPost, "/xandzero/play", `{}`, "")

		assert.Equal(t, http.StatusUnauthorized, response.Code)
		matches.AssertNotCalled(t, "PlayMove", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error with invalid token", func(t *testing.T) {
		response := do(newTestServer(&mockMatches{}, &stubLeaderboard{}), http.MethodPost, "/xandzero/play", `{}`, "forged")

		assert.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("Error on malformed body", func(t *testing.T) {
		response := do(newTestServer(&mockMatches{}, &stubLeaderboard{}), http.MethodPost, "/xandzero/play", `{"board":`, validToken)

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("move result is returned", func(t *testing.T) {
		// Given: the usecase accepts the move
		match := entity.NewMatch("m1", goku.ID, entity.ModeClassic, 0)
		match.Board = entity.Board{"X", "", "O", "", "O", "", "", "", "X"}
		match.History = []int{0, 4, 8, 2}

		matches := &mockMatches{}
		matches.On("PlayMove", mock.Anything, *goku, mock.MatchedBy(func(claim tictactoe.Claim) bool {
			return claim.Mode == "normal" && len(claim.Board) == 9 && !claim.UsePowerUp
		})).Return(&usecase.MoveResult{Match: match}, nil).Once()

		// When: the move is posted
		response := do(newTestServer(matches, &stubLeaderboard{}), http.MethodPost, "/xandzero/play",
			`{"board":["X","","","","O","","","","X"],"move_history":[0,4,8],"game_mode":"normal","used_power_up":false}`, validToken)

		// Then: the board comes back with a null winner
		require.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{
			"board": ["X","","O","","O","","","","X"],
			"move_history": [0,4,8,2],
			"game_mode": "normal",
			"winner": null,
			"score_increment": 0,
			"power_up_used_by_ai": false,
			"points": 0
		}`, response.Body.String())
		matches.AssertExpectations(t)
	})

	t.Run("invalid move is a client error", func(t *testing.T) {
		matches := &mockMatches{}
		matches.On("PlayMove", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperror.ErrInsufficientPoints).Once()

		response := do(newTestServer(matches, &stubLeaderboard{}), http.MethodPost, "/xandzero/play",
			`{"board":["X","","","","O","","","",""],"used_power_up":true,"erase_index":4}`, validToken)

		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.Contains(t, response.Body.String(), apperror.ErrInsufficientPoints.Error())
	})

	t.Run("store outage is unavailable", func(t *testing.T) {
		matches := &mockMatches{}
		matches.On("PlayMove", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperror.ErrStoreUnavailable).Once()

		response := do(newTestServer(matches, &stubLeaderboard{}), http.MethodPost, "/xandzero/play",
			`{"board":["X","","","","","","","",""]}`, validToken)

		assert.Equal(t, http.StatusServiceUnavailable, response.Code)
	})
}

func TestAbandonXandZero(t *testing.T) {
	matches := &mockMatches{}
	matches.On("Abandon", mock.Anything, *goku).Return(nil).Once()

	response := do(newTestServer(matches, &stubLeaderboard{}), http.MethodDelete, "/xandzero/match", "", validToken)

	assert.Equal(t, http.StatusNoContent, response.Code)
	matches.AssertExpectations(t)
}

func TestLeaderboard(t *testing.T) {
	t.Run("rows are ranked", func(t *testing.T) {
		leaderboard := &stubLeaderboard{entries: []entity.RankedEntry{
			{LeaderboardEntry: entity.LeaderboardEntry{Username: "goku", BestScore: 90}, Rank: 1},
			{LeaderboardEntry: entity.LeaderboardEntry{Username: "vegeta", BestScore: 80}, Rank: 2},
		}}

		response := do(newTestServer(&mockMatches{}, leaderboard), http.MethodGet, "/leaderboard?game=xandzero&limit=2", "", "")

		require.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `[{"rank":1,"username":"goku","score":90},{"rank":2,"username":"vegeta","score":80}]`, response.Body.String())
		assert.Equal(t, int64(2), leaderboard.limit)
		assert.Empty(t, response.Header().Get(degradedHeader))
	})

	t.Run("degraded read is flagged", func(t *testing.T) {
		response := do(newTestServer(&mockMatches{}, &stubLeaderboard{entries: []entity.RankedEntry{}, degraded: true}), http.MethodGet, "/leaderboard", "", "")

		require.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "true", response.Header().Get(degradedHeader))
		assert.JSONEq(t, `[]`, response.Body.String())
	})

	t.Run("Error on unknown game", func(t *testing.T) {
		response := do(newTestServer(&mockMatches{}, &stubLeaderboard{}), http.MethodGet, "/leaderboard?game=chess", "", "")

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Error on bad limit", func(t *testing.T) {
		response := do(newTestServer(&mockMatches{}, &stubLeaderboard{}), http.MethodGet, "/leaderboard?limit=ten", "", "")

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})
}

func TestMyRank(t *testing.T) {
	t.Run("rank and score", func(t *testing.T) {
		leaderboard := &stubLeaderboard{ranked: &entity.RankedEntry{LeaderboardEntry: entity.LeaderboardEntry{BestScore: 70}, Rank: 3}}

		response := do(newTestServer(&mockMatches{}, leaderboard), http.MethodGet, "/leaderboard/me?game=dragonball", "", validToken)

		require.Equal(t, http.StatusOK, response.Code)
		var body rankResponse
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
		assert.Equal(t, rankResponse{Rank: 3, Score: 70}, body)
	})

	t.Run("not found", func(t *testing.T) {
		leaderboard := &stubLeaderboard{rankErr: apperror.ErrNotFound}

		response := do(newTestServer(&mockMatches{}, leaderboard), http.MethodGet, "/leaderboard/me", "", validToken)

		assert.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("Error without token", func(t *testing.T) {
		response := do(newTestServer(&mockMatches{}, &stubLeaderboard{}), http.MethodGet, "/leaderboard/me", "", "")

		assert.Equal(t, http.StatusUnauthorized, response.Code)
	})
}
