package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

// Claim is the board a client sends together with its intended action.
type Claim struct {
	Board      []string
	Mode       string
	UsePowerUp bool
	EraseIndex *int
	Cell       *int
}

// ResolveAction reconciles a client claim against the stored match and derives the human action.
// The stored board is authoritative: the claim may differ from it by at most the human's new X.
func ResolveAction(match *entity.Match, claim Claim) (Action, error) {
	mode, err := entity.ParseGameMode(claim.Mode)
	if err != nil {
		return nil, err
	}

	if mode != match.Mode {
		return nil, fmt.Errorf("%w: match is %s, claim is %s", apperror.ErrModeMismatch, match.Mode, mode)
	}

	board, err := entity.ParseBoard(claim.Board)
	if err != nil {
		return nil, err
	}

	if claim.UsePowerUp {
		if claim.EraseIndex == nil {
			return nil, fmt.Errorf("%w: erase_index is required", apperror.ErrInvalidCell)
		}
		if board != match.Board {
			return nil, fmt.Errorf("%w: erase claim differs from stored board", apperror.ErrBoardMismatch)
		}
		return Erase{Cell: *claim.EraseIndex}, nil
	}

	if claim.Cell != nil {
		cell := *claim.Cell
		if err = entity.ValidateCell(cell); err != nil {
			return nil, err
		}

		expected := match.Board
		if expected[cell] == entity.EmptyCell {
			expected[cell] = entity.PlayerX
		}

		if board != match.Board && board != expected {
			return nil, fmt.Errorf("%w: claim does not match cell %d", apperror.ErrBoardMismatch, cell)
		}
		return Place{Cell: cell}, nil
	}

	cell, err := placedCell(match.Board, board)
	if err != nil {
		return nil, err
	}

	return Place{Cell: cell}, nil
}

// placedCell returns the single cell that went from empty to X.
func placedCell(stored, claimed entity.Board) (int, error) {
	placed := -1

	for i := range stored {
		if stored[i] == claimed[i] {
			continue
		}

		if stored[i] != entity.EmptyCell || claimed[i] != entity.PlayerX || placed != -1 {
			return 0, fmt.Errorf("%w: unexpected change at cell %d", apperror.ErrBoardMismatch, i)
		}

		placed = i
	}

	if placed == -1 {
		return 0, fmt.Errorf("%w: no move found", apperror.ErrBoardMismatch)
	}

	return placed, nil
}
