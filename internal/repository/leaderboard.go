package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

// LeaderboardStore keeps the best score per (game, user).
type LeaderboardStore interface {
	// Submit stores entry when it beats the user's best score and reports whether it did.
	Submit(ctx context.Context, entry entity.LeaderboardEntry) (bool, error)
	TopN(ctx context.Context, gameID string, n int64) ([]entity.RankedEntry, error)
	RankOf(ctx context.Context, gameID, userID string) (*entity.RankedEntry, error)
}

// submitScript keeps the sorted set and the metadata hash in step. Scores are negated so
// ascending order in the sorted set is descending by best score.
var submitScript = redis.NewScript(`
local current = redis.call('ZSCORE', KEYS[1], ARGV[1])
local score = tonumber(ARGV[2])
if current and -tonumber(current) >= score then
	return 0
end
redis.call('ZADD', KEYS[1], -score, ARGV[1])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[3])
return 1
`)

type entryMeta struct {
	Username   string `json:"username"`
	AchievedAt int64  `json:"achieved_at"`
}

type dbLeaderboard struct {
	client *redis.Client
}

func NewLeaderboardRepository(client *redis.Client) LeaderboardStore {
	return &dbLeaderboard{
		client: client,
	}
}

func scoresKey(gameID string) string {
	return "leaderboard:" + gameID
}

func usersKey(gameID string) string {
	return "leaderboard:" + gameID + ":users"
}

func (that *dbLeaderboard) Submit(ctx context.Context, entry entity.LeaderboardEntry) (bool, error) {
	meta, err := json.Marshal(entryMeta{
		Username:   entry.Username,
		AchievedAt: entry.AchievedAt.UTC().UnixMilli(),
	})
	if err != nil {
		return false, fmt.Errorf("could not marshal leaderboard entry: %w", err)
	}

	updated, err := submitScript.Run(ctx, that.client,
		[]string{scoresKey(entry.GameID), usersKey(entry.GameID)},
		entry.UserID, entry.BestScore, meta,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to submit score: %w", err)
	}

	return updated == 1, nil
}

func (that *dbLeaderboard) TopN(ctx context.Context, gameID string, n int64) ([]entity.RankedEntry, error) {
	if n <= 0 {
		return []entity.RankedEntry{}, nil
	}

	top, err := that.client.ZRangeWithScores(ctx, scoresKey(gameID), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get top scores: %w", err)
	}

	if len(top) == 0 {
		return []entity.RankedEntry{}, nil
	}

	// members tied with the last one may belong ahead of it
	boundary := formatScore(top[len(top)-1].Score)
	candidates, err := that.client.ZRangeByScoreWithScores(ctx, scoresKey(gameID), &redis.ZRangeBy{
		Min: "-inf",
		Max: boundary,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get tied scores: %w", err)
	}

	entries, err := that.entries(ctx, gameID, candidates)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, compareEntries)
	entries = entries[:min(int64(len(entries)), n)]

	ranked := make([]entity.RankedEntry, 0, len(entries))
	for i, entry := range entries {
		ranked = append(ranked, entity.RankedEntry{LeaderboardEntry: entry, Rank: int64(i) + 1})
	}

	return ranked, nil
}

func (that *dbLeaderboard) RankOf(ctx context.Context, gameID, userID string) (*entity.RankedEntry, error) {
	score, err := that.client.ZScore(ctx, scoresKey(gameID), userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("leaderboard entry %w", apperror.ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	better, err := that.client.ZCount(ctx, scoresKey(gameID), "-inf", "("+formatScore(score)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count better scores: %w", err)
	}

	tied, err := that.client.ZRangeByScoreWithScores(ctx, scoresKey(gameID), &redis.ZRangeBy{
		Min: formatScore(score),
		Max: formatScore(score),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get tied scores: %w", err)
	}

	entries, err := that.entries(ctx, gameID, tied)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(entries, func(entry entity.LeaderboardEntry) bool { return entry.UserID == userID })
	if idx < 0 {
		return nil, fmt.Errorf("leaderboard entry %w", apperror.ErrNotFound)
	}

	mine := entries[idx]
	rank := better + 1
	for _, entry := range entries {
		if entry.Before(mine) {
			rank++
		}
	}

	return &entity.RankedEntry{LeaderboardEntry: mine, Rank: rank}, nil
}

func (that *dbLeaderboard) entries(ctx context.Context, gameID string, members []redis.Z) ([]entity.LeaderboardEntry, error) {
	if len(members) == 0 {
		return []entity.LeaderboardEntry{}, nil
	}

	userIDs := make([]string, 0, len(members))
	for _, member := range members {
		userIDs = append(userIDs, fmt.Sprint(member.Member))
	}

	metas, err := that.client.HMGet(ctx, usersKey(gameID), userIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard users: %w", err)
	}

	entries := make([]entity.LeaderboardEntry, 0, len(members))
	for i, member := range members {
		entry := entity.LeaderboardEntry{
			GameID:    gameID,
			UserID:    userIDs[i],
			Username:  entity.AnonymousUsername,
			BestScore: int64(-member.Score),
		}

		if raw, ok := metas[i].(string); ok {
			var meta entryMeta
			if err = json.Unmarshal([]byte(raw), &meta); err != nil {
				return nil, fmt.Errorf("failed to unmarshal leaderboard user: %w", err)
			}
			entry.Username = meta.Username
			entry.AchievedAt = time.UnixMilli(meta.AchievedAt).UTC()
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func compareEntries(a, b entity.LeaderboardEntry) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	default:
		return 0
	}
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
