package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

const (
	defaultStoreTimeout  = 2 * time.Second
	defaultRetryInterval = 100 * time.Millisecond
)

type leaderboardStore interface {
	Submit(ctx context.Context, entry entity.LeaderboardEntry) (bool, error)
	TopN(ctx context.Context, gameID string, n int64) ([]entity.RankedEntry, error)
	RankOf(ctx context.Context, gameID, userID string) (*entity.RankedEntry, error)
}

type LeaderboardConfig struct {
	Timeout       time.Duration
	WriteRetries  uint64
	RetryInterval time.Duration
	DefaultGame   string
	DefaultLimit  int64
	MaxLimit      int64
}

// LeaderboardService bounds every store call with a timeout. Reads degrade to empty results,
// writes are retried and then surfaced.
type LeaderboardService struct {
	logger *slog.Logger
	store  leaderboardStore
	config LeaderboardConfig
	now    func() time.Time
}

func NewLeaderboardService(logger *slog.Logger, store leaderboardStore, config LeaderboardConfig) *LeaderboardService {
	if config.Timeout <= 0 {
		config.Timeout = defaultStoreTimeout
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = defaultRetryInterval
	}
	if config.DefaultGame == "" {
		config.DefaultGame = entity.GameDragonBall
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 10
	}
	if config.MaxLimit < config.DefaultLimit {
		config.MaxLimit = config.DefaultLimit
	}

	return &LeaderboardService{
		logger: logger,
		store:  store,
		config: config,
		now:    time.Now,
	}
}

// GameID resolves an optional game id from a request.
func (that *LeaderboardService) GameID(raw string) (string, error) {
	if raw == "" {
		return that.config.DefaultGame, nil
	}

	if err := entity.ValidateGameID(raw); err != nil {
		return "", err
	}

	return raw, nil
}

// Limit clamps a requested page size to (0, MaxLimit].
func (that *LeaderboardService) Limit(requested int64) int64 {
	if requested <= 0 {
		return that.config.DefaultLimit
	}
	return min(requested, that.config.MaxLimit)
}

// Submit records a finished score. It returns ErrStoreUnavailable once the retries are spent.
func (that *LeaderboardService) Submit(ctx context.Context, gameID string, user entity.User, score int64) error {
	log := that.logger.With("method", "Submit", "gameID", gameID, "userID", user.ID)

	if err := entity.ValidateGameID(gameID); err != nil {
		return err
	}

	entry := entity.LeaderboardEntry{
		GameID:     gameID,
		UserID:     user.ID,
		Username:   user.Username,
		BestScore:  score,
		AchievedAt: that.now().UTC().Truncate(time.Millisecond),
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = that.config.RetryInterval
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++

		callCtx, cancel := context.WithTimeout(ctx, that.config.Timeout)
		defer cancel()

		updated, err := that.store.Submit(callCtx, entry)
		if err != nil {
			log.Warn("score submission failed", "attempt", attempt, "error", err)
			return err
		}

		log.Debug("score submitted", "score", score, "updated", updated)

		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, that.config.WriteRetries), ctx))
	if err != nil {
		log.Error("score lost after retries", "score", score, "attempts", attempt, "error", err)
		return fmt.Errorf("%w: failed to submit score: %w", apperror.ErrStoreUnavailable, err)
	}

	return nil
}

// Top returns the first limit entries. degraded is true when the store could not be read.
func (that *LeaderboardService) Top(ctx context.Context, gameID string, limit int64) ([]entity.RankedEntry, bool) {
	log := that.logger.With("method", "Top", "gameID", gameID)

	callCtx, cancel := context.WithTimeout(ctx, that.config.Timeout)
	defer cancel()

	entries, err := that.store.TopN(callCtx, gameID, that.Limit(limit))
	if err != nil {
		log.Error("failed to read leaderboard", "error", err)
		return []entity.RankedEntry{}, true
	}

	return entries, false
}

// Rank returns the user's standing. A missing entry is ErrNotFound; an unreadable store yields a zero entry and degraded.
func (that *LeaderboardService) Rank(ctx context.Context, gameID, userID string) (*entity.RankedEntry, bool, error) {
	log := that.logger.With("method", "Rank", "gameID", gameID, "userID", userID)

	callCtx, cancel := context.WithTimeout(ctx, that.config.Timeout)
	defer cancel()

	ranked, err := that.store.RankOf(callCtx, gameID, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, false, err
	}

	if err != nil {
		log.Error("failed to read rank", "error", err)
		return &entity.RankedEntry{LeaderboardEntry: entity.LeaderboardEntry{GameID: gameID, UserID: userID}}, true, nil
	}

	return ranked, false, nil
}
