package entity

import (
	"fmt"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
)

const (
	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "Draw"

	EmptyCell = ""

	BoardSize = 9
)

// WinCombos lists the 3 rows, 3 columns and 2 diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Board [BoardSize]string

// Result returns the winning mark, PlayerTie for a full board, or EmptyCell while the game continues.
func (that Board) Result() string {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range that {
		if cell == EmptyCell {
			return EmptyCell
		}
	}

	return PlayerTie
}

func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}
	return cells
}

func (that Board) CellsOf(mark string) []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == mark {
			cells = append(cells, i)
		}
	}
	return cells
}

func (that Board) Count(mark string) int {
	return len(that.CellsOf(mark))
}

// ParseBoard converts a client board into a Board, rejecting unknown marks and wrong sizes.
func ParseBoard(cells []string) (Board, error) {
	var board Board

	if len(cells) != BoardSize {
		return board, fmt.Errorf("%w: board must have %d cells, got %d", apperror.ErrBoardMismatch, BoardSize, len(cells))
	}

	for i, cell := range cells {
		switch cell {
		case EmptyCell, PlayerX, PlayerO:
			board[i] = cell
		default:
			return board, fmt.Errorf("%w: unknown mark %q at cell %d", apperror.ErrBoardMismatch, cell, i)
		}
	}

	return board, nil
}

func ValidateCell(cell int) error {
	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}
	return nil
}

func Opponent(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
