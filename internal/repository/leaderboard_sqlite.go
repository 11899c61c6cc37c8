package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

type sqliteLeaderboard struct {
	conn *sql.DB
}

// NewSQLiteLeaderboardRepository expects the leaderboard table from the sqlite storage migrations.
func NewSQLiteLeaderboardRepository(conn *sql.DB) LeaderboardStore {
	return &sqliteLeaderboard{
		conn: conn,
	}
}

func (that *sqliteLeaderboard) Submit(ctx context.Context, entry entity.LeaderboardEntry) (bool, error) {
	query := `INSERT INTO leaderboard (game_id, user_id, username, best_score, achieved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (game_id, user_id) DO UPDATE SET
			username = excluded.username,
			best_score = excluded.best_score,
			achieved_at = excluded.achieved_at
		WHERE excluded.best_score > leaderboard.best_score`

	result, err := that.conn.ExecContext(ctx, query,
		entry.GameID, entry.UserID, entry.Username, entry.BestScore, entry.AchievedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("can't submit score: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("can't read submit result: %w", err)
	}

	return affected > 0, nil
}

func (that *sqliteLeaderboard) TopN(ctx context.Context, gameID string, n int64) ([]entity.RankedEntry, error) {
	query := `SELECT user_id, username, best_score, achieved_at FROM leaderboard
		WHERE game_id = ?
		ORDER BY best_score DESC, achieved_at ASC, user_id ASC
		LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, gameID, max(n, 0))
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

func (that *sqliteLeaderboard) RankOf(ctx context.Context, gameID, userID string) (*entity.RankedEntry, error) {
	query := `SELECT username, best_score, achieved_at FROM leaderboard WHERE game_id = ? AND user_id = ?`

	entry := entity.LeaderboardEntry{GameID: gameID, UserID: userID}
	var achievedAt int64

	err := that.conn.QueryRowContext(ctx, query, gameID, userID).Scan(&entry.Username, &entry.BestScore, &achievedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("leaderboard entry %w", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("can't find leaderboard entry: %w", err)
	}
	entry.AchievedAt = time.UnixMilli(achievedAt).UTC()

	aheadQuery := `SELECT COUNT(*) FROM leaderboard
		WHERE game_id = ? AND (
			best_score > ?
			OR (best_score = ? AND achieved_at < ?)
			OR (best_score = ? AND achieved_at = ? AND user_id < ?)
		)`

	var ahead int64
	err = that.conn.QueryRowContext(ctx, aheadQuery, gameID,
		entry.BestScore,
		entry.BestScore, achievedAt,
		entry.BestScore, achievedAt, userID,
	).Scan(&ahead)
	if err != nil {
		return nil, fmt.Errorf("can't count leaderboard rank: %w", err)
	}

	return &entity.RankedEntry{LeaderboardEntry: entry, Rank: ahead + 1}, nil
}
