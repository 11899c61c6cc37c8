package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
)

// spendScript deducts ARGV[1] only when the balance covers it, returning -1 otherwise.
var spendScript = redis.NewScript(`
local balance = tonumber(redis.call('GET', KEYS[1]) or '0')
local amount = tonumber(ARGV[1])
if balance < amount then
	return -1
end
return redis.call('DECRBY', KEYS[1], amount)
`)

// PointsRepository keeps the cumulative points pool a user earns per game.
type PointsRepository interface {
	Balance(ctx context.Context, gameID, userID string) (int64, error)
	Add(ctx context.Context, gameID, userID string, delta int64) (int64, error)
	Spend(ctx context.Context, gameID, userID string, amount int64) (int64, error)
}

type dbPoints struct {
	client *redis.Client
}

func NewPointsRepository(client *redis.Client) PointsRepository {
	return &dbPoints{
		client: client,
	}
}

func pointsKey(gameID, userID string) string {
	return "points:" + gameID + ":" + userID
}

func (that *dbPoints) Balance(ctx context.Context, gameID, userID string) (int64, error) {
	balance, err := that.client.Get(ctx, pointsKey(gameID, userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get points: %w", err)
	}

	return balance, nil
}

func (that *dbPoints) Add(ctx context.Context, gameID, userID string, delta int64) (int64, error) {
	balance, err := that.client.IncrBy(ctx, pointsKey(gameID, userID), delta).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to add points: %w", err)
	}

	return balance, nil
}

// Spend atomically deducts amount and returns the new balance, or ErrInsufficientPoints.
func (that *dbPoints) Spend(ctx context.Context, gameID, userID string, amount int64) (int64, error) {
	balance, err := spendScript.Run(ctx, that.client, []string{pointsKey(gameID, userID)}, amount).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to spend points: %w", err)
	}

	if balance < 0 {
		return 0, fmt.Errorf("%w: need %d", apperror.ErrInsufficientPoints, amount)
	}

	return balance, nil
}
