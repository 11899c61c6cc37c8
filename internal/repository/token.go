package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist records revoked token ids until the token would have expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type dbTokenDenylist struct {
	client *redis.Client
}

func NewTokenDenylist(client *redis.Client) TokenDenylist {
	return &dbTokenDenylist{
		client: client,
	}
}

func revokedKey(jti string) string {
	return "revoked_token:" + jti
}

func (that *dbTokenDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := that.client.Set(ctx, revokedKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

func (that *dbTokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := that.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}

	return count > 0, nil
}
