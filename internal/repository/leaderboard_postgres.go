package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

type postgresLeaderboard struct {
	pool *pgxpool.Pool
}

// NewPostgresLeaderboardRepository expects the leaderboard table from the postgres storage migrations.
func NewPostgresLeaderboardRepository(pool *pgxpool.Pool) LeaderboardStore {
	return &postgresLeaderboard{
		pool: pool,
	}
}

func (that *postgresLeaderboard) Submit(ctx context.Context, entry entity.LeaderboardEntry) (bool, error) {
	query := `INSERT INTO leaderboard (game_id, user_id, username, best_score, achieved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, user_id) DO UPDATE SET
			username = excluded.username,
			best_score = excluded.best_score,
			achieved_at = excluded.achieved_at
		WHERE excluded.best_score > leaderboard.best_score`

	tag, err := that.pool.Exec(ctx, query,
		entry.GameID, entry.UserID, entry.Username, entry.BestScore, entry.AchievedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("can't submit score: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (that *postgresLeaderboard) TopN(ctx context.Context, gameID string, n int64) ([]entity.RankedEntry, error) {
	query := `SELECT user_id, username, best_score, achieved_at FROM leaderboard
		WHERE game_id = $1
		ORDER BY best_score DESC, achieved_at ASC, user_id ASC
		LIMIT $2`

	rows, err := that.pool.Query(ctx, query, gameID, max(n, 0))
	if err != nil {
		return nil, fmt.Errorf("can't query leaderboard: %w", err)
	}
	defer rows.Close()

	ranked := make([]entity.RankedEntry, 0, max(n, 0))
	for rows.Next() {
		entry := entity.LeaderboardEntry{GameID: gameID}
		var achievedAt int64

		if err = rows.Scan(&entry.UserID, &entry.Username, &entry.BestScore, &achievedAt); err != nil {
			return nil, fmt.Errorf("can't scan leaderboard row: %w", err)
		}
		entry.AchievedAt = time.UnixMilli(achievedAt).UTC()

		ranked = append(ranked, entity.RankedEntry{LeaderboardEntry: entry, Rank: int64(len(ranked)) + 1})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read leaderboard: %w", err)
	}

	return ranked, nil
}

// RankOf counts the entries ordered ahead of the user in the same statement that reads the user's row.
func (that *postgresLeaderboard) RankOf(ctx context.Context, gameID, userID string) (*entity.RankedEntry, error) {
	query := `SELECT me.username, me.best_score, me.achieved_at,
			(SELECT COUNT(*) FROM leaderboard other
				WHERE other.game_id = me.game_id AND (
					other.best_score > me.best_score
					OR (other.best_score = me.best_score AND other.achieved_at < me.achieved_at)
					OR (other.best_score = me.best_score AND other.achieved_at = me.achieved_at AND other.user_id < me.user_id)
				))
		FROM leaderboard me
		WHERE me.game_id = $1 AND me.user_id = $2`

	entry := entity.LeaderboardEntry{GameID: gameID, UserID: userID}
	var achievedAt, ahead int64

	err := that.pool.QueryRow(ctx, query, gameID, userID).Scan(&entry.Username, &entry.BestScore, &achievedAt, &ahead)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("leaderboard entry %w", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("can't find leaderboard entry: %w", err)
	}
	entry.AchievedAt = time.UnixMilli(achievedAt).UTC()

	return &entity.RankedEntry{LeaderboardEntry: entry, Rank: ahead + 1}, nil
}
