package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/pkg"
	"github.com/rocketscienceinc/gamehub-backend/internal/tictactoe"
)

type matchRepo interface {
	Save(ctx context.Context, match *entity.Match) error
	GetByUserID(ctx context.Context, userID string) (*entity.Match, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type pointsRepo interface {
	Balance(ctx context.Context, gameID, userID string) (int64, error)
	Add(ctx context.Context, gameID, userID string, delta int64) (int64, error)
	Spend(ctx context.Context, gameID, userID string, amount int64) (int64, error)
}

type scoreSubmitter interface {
	Submit(ctx context.Context, gameID string, user entity.User, score int64) error
}

type turnEngine interface {
	ApplyMove(match *entity.Match, action tictactoe.Action, points int) (*tictactoe.Outcome, error)
}

// MoveResult is the match after the human action and the AI reply.
type MoveResult struct {
	Match           *entity.Match
	ScoreIncrement  int
	PowerUpUsedByAI bool
	AIEraseIndex    *int
	Points          int64
}

// MatchManager referees xandzero matches against the AI. The stored match is the source of truth.
type MatchManager struct {
	logger *slog.Logger

	matchRepo   matchRepo
	pointsRepo  pointsRepo
	leaderboard scoreSubmitter
	engine      turnEngine

	aiBudget int
}

func NewMatchManager(
	logger *slog.Logger,
	matchRepo matchRepo,
	pointsRepo pointsRepo,
	leaderboard scoreSubmitter,
	engine turnEngine,
	aiBudget int,
) *MatchManager {
	return &MatchManager{
		logger: logger,

		matchRepo:   matchRepo,
		pointsRepo:  pointsRepo,
		leaderboard: leaderboard,
		engine:      engine,

		aiBudget: aiBudget,
	}
}

// PlayMove reconciles the claim with the stored match, applies it and settles a finished match.
func (that *MatchManager) PlayMove(ctx context.Context, user entity.User, claim tictactoe.Claim) (*MoveResult, error) {
	log := that.logger.With("method", "PlayMove", "userID", user.ID)

	match, action, err := that.resolve(ctx, user, claim)
	if err != nil {
		return nil, err
	}

	log = log.With("matchID", match.ID)

	balance, err := that.pointsRepo.Balance(ctx, entity.GameXandZero, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get points: %w", apperror.ErrStoreUnavailable, err)
	}

	outcome, err := that.engine.ApplyMove(match, action, int(balance))
	if err != nil {
		return nil, fmt.Errorf("failed make turn: %w", err)
	}

	if outcome.PointsSpent > 0 {
		balance, err = that.pointsRepo.Spend(ctx, entity.GameXandZero, user.ID, int64(outcome.PointsSpent))
		if err != nil {
			return nil, fmt.Errorf("failed to spend points: %w", err)
		}
		log.Info("erase power-up used", "points", balance)
	}

	if err = that.matchRepo.Save(ctx, outcome.Match); err != nil {
		that.refund(ctx, user, outcome.PointsSpent)
		return nil, fmt.Errorf("%w: failed update match: %w", apperror.ErrStoreUnavailable, err)
	}

	result := &MoveResult{
		Match:           outcome.Match,
		ScoreIncrement:  outcome.ScoreDelta,
		PowerUpUsedByAI: outcome.AIPowerUpUsed,
		AIEraseIndex:    outcome.AIEraseIndex,
		Points:          balance,
	}

	if !outcome.Match.IsFinished() {
		return result, nil
	}

	log.Info("match finished", "winner", outcome.Match.Winner, "scoreDelta", outcome.ScoreDelta)

	if result.Points, err = that.settle(ctx, user, outcome.ScoreDelta); err != nil {
		return nil, err
	}

	return result, nil
}

// Abandon drops the user's current match. Abandoning when there is none is not an error.
func (that *MatchManager) Abandon(ctx context.Context, user entity.User) error {
	if err := that.matchRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("%w: failed to abandon match: %w", apperror.ErrStoreUnavailable, err)
	}

	that.logger.Info("match abandoned", "method", "Abandon", "userID", user.ID)

	return nil
}

// resolve finds the match the claim belongs to. A claim that only fits an empty board starts a new match.
func (that *MatchManager) resolve(ctx context.Context, user entity.User, claim tictactoe.Claim) (*entity.Match, tictactoe.Action, error) {
	log := that.logger.With("method", "resolve", "userID", user.ID)

	stored, err := that.matchRepo.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: failed get match: %w", apperror.ErrStoreUnavailable, err)
	}

	mode, err := entity.ParseGameMode(claim.Mode)
	if err != nil {
		return nil, nil, err
	}

	var storedErr error
	if stored != nil && !stored.IsFinished() {
		action, err := tictactoe.ResolveAction(stored, claim)
		if err == nil {
			return stored, action, nil
		}
		storedErr = err
	}

	fresh := entity.NewMatch(pkg.GenerateMatchID(), user.ID, mode, that.aiBudget)
	action, err := tictactoe.ResolveAction(fresh, claim)
	switch {
	case err == nil:
		if stored != nil {
			log.Info("starting a new match", "previousMatchID", stored.ID)
		}
		return fresh, action, nil
	case storedErr != nil:
		return nil, nil, storedErr
	case stored != nil:
		return nil, nil, apperror.ErrGameFinished
	default:
		return nil, nil, err
	}
}

// settle credits the outcome to the points pool and submits the new balance to the leaderboard.
func (that *MatchManager) settle(ctx context.Context, user entity.User, delta int) (int64, error) {
	balance, err := that.pointsRepo.Add(ctx, entity.GameXandZero, user.ID, int64(delta))
	if err != nil {
		return 0, fmt.Errorf("%w: failed to credit points: %w", apperror.ErrStoreUnavailable, err)
	}

	if err = that.leaderboard.Submit(ctx, entity.GameXandZero, user, balance); err != nil {
		return 0, fmt.Errorf("failed to submit score: %w", err)
	}

	return balance, nil
}

func (that *MatchManager) refund(ctx context.Context, user entity.User, amount int) {
	if amount == 0 {
		return
	}

	if _, err := that.pointsRepo.Add(ctx, entity.GameXandZero, user.ID, int64(amount)); err != nil {
		that.logger.Error("failed to refund points", "method", "refund", "userID", user.ID, "amount", amount, "error", err)
	}
}
