package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

var (
	centerCell  = 4
	cornerCells = []int{0, 2, 6, 8}
	edgeCells   = []int{1, 3, 5, 7}
)

// chooseCell picks the AI's placement: win, then block, then the heuristic order.
func (that *Engine) chooseCell(match *entity.Match, rules ruleset) (int, error) {
	empty := match.Board.EmptyCells()
	if len(empty) == 0 {
		return 0, apperror.ErrNoAvailableMoves
	}

	if cell, ok := winningCell(match, rules, entity.PlayerO); ok {
		return cell, nil
	}

	if cell, ok := winningCell(match, rules, entity.PlayerX); ok {
		return cell, nil
	}

	if that.random.Float64() < that.config.AIRandomness {
		return empty[that.random.IntN(len(empty))], nil
	}

	if match.Board[centerCell] == entity.EmptyCell {
		return centerCell, nil
	}

	if cell, ok := that.pickEmpty(match.Board, cornerCells); ok {
		return cell, nil
	}

	if cell, ok := that.pickEmpty(match.Board, edgeCells); ok {
		return cell, nil
	}

	return 0, fmt.Errorf("%w: no heuristic cell", apperror.ErrNoAvailableMoves)
}

func (that *Engine) pickEmpty(board entity.Board, cells []int) (int, bool) {
	free := make([]int, 0, len(cells))
	for _, cell := range cells {
		if board[cell] == entity.EmptyCell {
			free = append(free, cell)
		}
	}

	if len(free) == 0 {
		return 0, false
	}

	return free[that.random.IntN(len(free))], true
}

// winningCell finds an empty cell where mark wins immediately, simulating sudden death evictions.
func winningCell(match *entity.Match, rules ruleset, mark string) (int, bool) {
	for _, cell := range match.Board.EmptyCells() {
		sim := match.Clone()
		if _, err := rules.place(sim, mark, cell); err != nil {
			continue
		}

		if sim.Board.Result() == mark {
			return cell, true
		}
	}

	return 0, false
}

func (that *Engine) shouldErase(match *entity.Match) bool {
	if match.AIBudget < EraseCost {
		return false
	}

	if match.Board.Count(entity.PlayerX) < 2 {
		return false
	}

	return that.random.Float64() < that.config.AIEraseChance
}

// eraseTarget prefers an X that takes part in a line the human could complete next turn.
func (that *Engine) eraseTarget(match *entity.Match, rules ruleset) int {
	threats := make(map[int]int)

	for _, cell := range match.Board.EmptyCells() {
		sim := match.Clone()
		if _, err := rules.place(sim, entity.PlayerX, cell); err != nil {
			continue
		}

		for _, combo := range entity.WinCombos {
			if !completes(sim.Board, combo, entity.PlayerX) || !contains(combo, cell) {
				continue
			}
			for _, idx := range combo {
				if idx != cell {
					threats[idx]++
				}
			}
		}
	}

	marks := match.Board.CellsOf(entity.PlayerX)
	if len(threats) == 0 {
		return marks[that.random.IntN(len(marks))]
	}

	best := make([]int, 0, len(threats))
	top := 0
	for _, cell := range marks {
		switch n := threats[cell]; {
		case n > top:
			top = n
			best = append(best[:0], cell)
		case n == top && n > 0:
			best = append(best, cell)
		}
	}

	return best[that.random.IntN(len(best))]
}

func completes(board entity.Board, combo [3]int, mark string) bool {
	return board[combo[0]] == mark && board[combo[1]] == mark && board[combo[2]] == mark
}

func contains(combo [3]int, cell int) bool {
	return combo[0] == cell || combo[1] == cell || combo[2] == cell
}
