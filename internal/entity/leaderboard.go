package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
)

const (
	GameXandZero   = "xandzero"
	GameDragonBall = "dragonball"
)

var knownGames = map[string]struct{}{
	GameXandZero:   {},
	GameDragonBall: {},
}

func ValidateGameID(gameID string) error {
	if _, ok := knownGames[gameID]; !ok {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidGame, gameID)
	}
	return nil
}

// LeaderboardEntry holds the best score of one user in one game.
type LeaderboardEntry struct {
	GameID     string    `json:"game_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	BestScore  int64     `json:"score"`
	AchievedAt time.Time `json:"achieved_at"`
}

type RankedEntry struct {
	LeaderboardEntry
	Rank int64 `json:"rank"`
}

// Before reports whether that ranks ahead of other: higher score first, then earlier achievement, then user id.
func (that LeaderboardEntry) Before(other LeaderboardEntry) bool {
	if that.BestScore != other.BestScore {
		return that.BestScore > other.BestScore
	}
	if !that.AchievedAt.Equal(other.AchievedAt) {
		return that.AchievedAt.Before(other.AchievedAt)
	}
	return that.UserID < other.UserID
}
