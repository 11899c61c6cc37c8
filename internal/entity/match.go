package entity

import (
	"fmt"
	"slices"
	"time"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

type GameMode string

const (
	ModeClassic     GameMode = "normal"
	ModeSuddenDeath GameMode = "sudden_death"
)

// ParseGameMode maps the wire value to a GameMode. An empty value means classic.
func ParseGameMode(raw string) (GameMode, error) {
	switch GameMode(raw) {
	case "", ModeClassic:
		return ModeClassic, nil
	case ModeSuddenDeath:
		return ModeSuddenDeath, nil
	default:
		return "", fmt.Errorf("%w: %s", apperror.ErrInvalidGameMode, raw)
	}
}

// Match is the authoritative state of one xandzero game between a user and the AI.
type Match struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Board     Board     `json:"board"`
	History   []int     `json:"move_history"`
	Mode      GameMode  `json:"game_mode"`
	Winner    string    `json:"winner"`
	Status    string    `json:"status"`
	AIBudget  int       `json:"ai_budget"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewMatch(id, userID string, mode GameMode, aiBudget int) *Match {
	return &Match{
		ID:       id,
		UserID:   userID,
		History:  []int{},
		Mode:     mode,
		Status:   StatusOngoing,
		AIBudget: aiBudget,
	}
}

func (that *Match) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Match) Clone() *Match {
	clone := *that
	clone.History = slices.Clone(that.History)
	return &clone
}

// Put places mark on an empty cell and records it in the history.
func (that *Match) Put(mark string, cell int) error {
	if err := ValidateCell(cell); err != nil {
		return err
	}

	if that.Board[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that.Board[cell] = mark
	that.History = append(that.History, cell)

	return nil
}

// Remove clears a non-empty cell and drops it from the history.
func (that *Match) Remove(cell int) error {
	if err := ValidateCell(cell); err != nil {
		return err
	}

	if that.Board[cell] == EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellEmpty, cell)
	}

	that.Board[cell] = EmptyCell
	that.History = slices.DeleteFunc(that.History, func(i int) bool { return i == cell })

	return nil
}

// OldestOf returns the earliest surviving history index that holds mark.
func (that *Match) OldestOf(mark string) (int, bool) {
	for _, cell := range that.History {
		if that.Board[cell] == mark {
			return cell, true
		}
	}
	return 0, false
}

// UpdateState finishes the match when the board has a winner or is full.
func (that *Match) UpdateState() {
	switch winner := that.Board.Result(); winner {
	case PlayerX, PlayerO, PlayerTie:
		that.Winner = winner
		that.Status = StatusFinished
	default:
		that.Winner = ""
		that.Status = StatusOngoing
	}
}

func (that *Match) ConfirmOngoingState() error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}
	return nil
}
