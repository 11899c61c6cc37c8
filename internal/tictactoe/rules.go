package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

const (
	ScoreWin  = 100
	ScoreDraw = 20
	ScoreLoss = 10

	EraseCost = 50

	// SuddenDeathLimit is the number of live marks a side may hold in sudden death.
	SuddenDeathLimit = 3
)

// Action is what the human does on a turn: Place or Erase.
type Action interface {
	isAction()
}

type Place struct {
	Cell int
}

type Erase struct {
	Cell int
}

func (Place) isAction() {}
func (Erase) isAction() {}

// ruleset places a mark according to the match's game mode and reports the evicted cell, if any.
type ruleset interface {
	place(match *entity.Match, mark string, cell int) (*int, error)
}

type classicRules struct{}

type suddenDeathRules struct{}

func rulesFor(mode entity.GameMode) (ruleset, error) {
	switch mode {
	case entity.ModeClassic:
		return classicRules{}, nil
	case entity.ModeSuddenDeath:
		return suddenDeathRules{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidGameMode, mode)
	}
}

func (classicRules) place(match *entity.Match, mark string, cell int) (*int, error) {
	if err := match.Put(mark, cell); err != nil {
		return nil, err
	}
	return nil, nil
}

// place evicts the side's oldest surviving mark before a 4th one goes down.
func (suddenDeathRules) place(match *entity.Match, mark string, cell int) (*int, error) {
	if err := entity.ValidateCell(cell); err != nil {
		return nil, err
	}

	if match.Board[cell] != entity.EmptyCell {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	var evicted *int
	if match.Board.Count(mark) >= SuddenDeathLimit {
		oldest, ok := match.OldestOf(mark)
		if ok {
			if err := match.Remove(oldest); err != nil {
				return nil, fmt.Errorf("failed to evict oldest mark: %w", err)
			}
			evicted = &oldest
		}
	}

	if err := match.Put(mark, cell); err != nil {
		return nil, err
	}

	return evicted, nil
}

// ScoreFor returns the points the human earns for a finished match.
func ScoreFor(winner string) int {
	switch winner {
	case entity.PlayerX:
		return ScoreWin
	case entity.PlayerTie:
		return ScoreDraw
	case entity.PlayerO:
		return ScoreLoss
	default:
		return 0
	}
}
