package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

var errStoreDown = errors.New("store down")

type mockStore struct {
	mock.Mock
}

func (that *mockStore) Submit(ctx context.Context, entry entity.LeaderboardEntry) (bool, error) {
	args := that.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (that *mockStore) TopN(ctx context.Context, gameID string, n int64) ([]entity.RankedEntry, error) {
	args := that.Called(ctx, gameID, n)
	entries, _ := args.Get(0).([]entity.RankedEntry)
	return entries, args.Error(1)
}

func (that *mockStore) RankOf(ctx context.Context, gameID, userID string) (*entity.RankedEntry, error) {
	args := that.Called(ctx, gameID, userID)
	ranked, _ := args.Get(0).(*entity.RankedEntry)
	return ranked, args.Error(1)
}

func newLeaderboardService(store leaderboardStore) *LeaderboardService {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return NewLeaderboardService(logger, store, LeaderboardConfig{
		Timeout:       time.Second,
		WriteRetries:  2,
		RetryInterval: time.Millisecond,
		DefaultGame:   entity.GameDragonBall,
		DefaultLimit:  10,
		MaxLimit:      100,
	})
}

func TestLeaderboardService_Submit(t *testing.T) {
	ctx := context.Background()
	user := entity.User{ID: "u1", Username: "goku"}

	t.Run("retries until the store accepts", func(t *testing.T) {
		// Given: a store that fails once
		store := &mockStore{}
		store.On("Submit", mock.Anything, mock.AnythingOfType("entity.LeaderboardEntry")).Return(false, errStoreDown).Once()
		store.On("Submit", mock.Anything, mock.MatchedBy(func(entry entity.LeaderboardEntry) bool {
			return entry.UserID == "u1" && entry.Username == "goku" && entry.BestScore == 120 && entry.GameID == entity.GameDragonBall
		})).Return(true, nil).Once()

		// When: a score is submitted
		err := newLeaderboardService(store).Submit(ctx, entity.GameDragonBall, user, 120)

		// Then: the second attempt went through
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("Error after the retries are spent", func(t *testing.T) {
		store := &mockStore{}
		store.On("Submit", mock.Anything, mock.Anything).Return(false, errStoreDown).Times(3)

		err := newLeaderboardService(store).Submit(ctx, entity.GameDragonBall, user, 120)

		require.ErrorIs(t, err, apperror.ErrStoreUnavailable)
		store.AssertExpectations(t)
	})

	t.Run("Error on unknown game", func(t *testing.T) {
		store := &mockStore{}

		err := newLeaderboardService(store).Submit(ctx, "chess", user, 1)

		require.ErrorIs(t, err, apperror.ErrInvalidGame)
		store.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})
}

func TestLeaderboardService_Reads(t *testing.T) {
	ctx := context.Background()

	t.Run("limit is clamped", func(t *testing.T) {
		store := &mockStore{}
		store.On("TopN", mock.Anything, entity.GameXandZero, int64(100)).Return([]entity.RankedEntry{}, nil).Once()

		entries, degraded := newLeaderboardService(store).Top(ctx, entity.GameXandZero, 5000)

		assert.Empty(t, entries)
		assert.False(t, degraded)
		store.AssertExpectations(t)
	})

	t.Run("top degrades to an empty list", func(t *testing.T) {
		store := &mockStore{}
		store.On("TopN", mock.Anything, entity.GameXandZero, int64(10)).Return(nil, errStoreDown).Once()

		entries, degraded := newLeaderboardService(store).Top(ctx, entity.GameXandZero, 0)

		assert.NotNil(t, entries)
		assert.Empty(t, entries)
		assert.True(t, degraded)
	})

	t.Run("rank not found passes through", func(t *testing.T) {
		store := &mockStore{}
		store.On("RankOf", mock.Anything, entity.GameXandZero, "u1").Return(nil, apperror.ErrNotFound).Once()

		_, degraded, err := newLeaderboardService(store).Rank(ctx, entity.GameXandZero, "u1")

		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.False(t, degraded)
	})

	t.Run("rank degrades to zero", func(t *testing.T) {
		store := &mockStore{}
		store.On("RankOf", mock.Anything, entity.GameXandZero, "u1").Return(nil, errStoreDown).Once()

		ranked, degraded, err := newLeaderboardService(store).Rank(ctx, entity.GameXandZero, "u1")

		require.NoError(t, err)
		assert.True(t, degraded)
		assert.Zero(t, ranked.Rank)
		assert.Zero(t, ranked.BestScore)
	})

	t.Run("game id defaults and validates", func(t *testing.T) {
		leaderboard := newLeaderboardService(&mockStore{})

		gameID, err := leaderboard.GameID("")
		require.NoError(t, err)
		assert.Equal(t, entity.GameDragonBall, gameID)

		_, err = leaderboard.GameID("chess")
		require.ErrorIs(t, err, apperror.ErrInvalidGame)
	})
}
