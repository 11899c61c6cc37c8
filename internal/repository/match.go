package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

type MatchRepository interface {
	Save(ctx context.Context, match *entity.Match) error
	GetByUserID(ctx context.Context, userID string) (*entity.Match, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type dbMatch struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchRepository keeps one xandzero match per user; idle matches expire after ttl.
func NewMatchRepository(client *redis.Client, ttl time.Duration) MatchRepository {
	return &dbMatch{
		client: client,
		ttl:    ttl,
	}
}

func matchKey(userID string) string {
	return "match:" + userID
}

func (that *dbMatch) Save(ctx context.Context, match *entity.Match) error {
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	if err = that.client.Set(ctx, matchKey(match.UserID), matchJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByUserID(ctx context.Context, userID string) (*entity.Match, error) {
	response, err := that.client.Get(ctx, matchKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("match %w", apperror.ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match by user id: %w", err)
	}

	var match entity.Match
	if err = json.Unmarshal([]byte(response), &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &match, nil
}

func (that *dbMatch) DeleteByUserID(ctx context.Context, userID string) error {
	if err := that.client.Del(ctx, matchKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	return nil
}
