package tictactoe

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

var ErrUnknownAction = errors.New("unknown action")

type Config struct {
	// AIRandomness is the chance the AI ignores the center/corner/edge order and picks any empty cell.
	AIRandomness float64
	// AIEraseChance is the chance the AI spends its erase budget when it has no winning move.
	AIEraseChance float64
}

// Random is the source of the AI's randomness.
type Random interface {
	Float64() float64
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() } //nolint: gosec // gameplay randomness
func (globalRandom) IntN(n int) int   { return rand.IntN(n) }   //nolint: gosec // gameplay randomness

// Outcome is the match state after the human action and the AI reply.
type Outcome struct {
	Match         *entity.Match
	ScoreDelta    int
	PointsSpent   int
	HumanEvicted  *int
	AIMove        *int
	AIEvicted     *int
	AIPowerUpUsed bool
	AIEraseIndex  *int
}

type Engine struct {
	config Config
	random Random
}

func NewEngine(config Config, random Random) *Engine {
	if random == nil {
		random = globalRandom{}
	}

	return &Engine{
		config: config,
		random: random,
	}
}

// ApplyMove applies the human action to a copy of match and, when the game goes on, the AI reply.
// points is the human's current score pool and is only consulted for Erase.
// The given match is never modified; on error nothing has changed.
func (that *Engine) ApplyMove(match *entity.Match, action Action, points int) (*Outcome, error) {
	if err := match.ConfirmOngoingState(); err != nil {
		return nil, err
	}

	rules, err := rulesFor(match.Mode)
	if err != nil {
		return nil, err
	}

	next := match.Clone()
	outcome := &Outcome{Match: next}

	switch act := action.(type) {
	case Place:
		evicted, err := rules.place(next, entity.PlayerX, act.Cell)
		if err != nil {
			return nil, fmt.Errorf("invalid turn: %w", err)
		}
		outcome.HumanEvicted = evicted
	case Erase:
		if err = entity.ValidateCell(act.Cell); err != nil {
			return nil, fmt.Errorf("invalid erase: %w", err)
		}
		if points < EraseCost {
			return nil, fmt.Errorf("%w: have %d, need %d", apperror.ErrInsufficientPoints, points, EraseCost)
		}
		if err = next.Remove(act.Cell); err != nil {
			return nil, fmt.Errorf("invalid erase: %w", err)
		}
		outcome.PointsSpent = EraseCost
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}

	next.UpdateState()
	if next.IsFinished() {
		outcome.ScoreDelta = ScoreFor(next.Winner)
		return outcome, nil
	}

	if err = that.aiTurn(next, rules, outcome); err != nil {
		return nil, err
	}

	next.UpdateState()
	outcome.ScoreDelta = ScoreFor(next.Winner)

	return outcome, nil
}

func (that *Engine) aiTurn(match *entity.Match, rules ruleset, outcome *Outcome) error {
	if _, ok := winningCell(match, rules, entity.PlayerO); !ok && that.shouldErase(match) {
		target := that.eraseTarget(match, rules)
		if err := match.Remove(target); err != nil {
			return fmt.Errorf("ai failed to erase: %w", err)
		}
		match.AIBudget -= EraseCost
		outcome.AIPowerUpUsed = true
		outcome.AIEraseIndex = &target
	}

	cell, err := that.chooseCell(match, rules)
	if err != nil {
		return err
	}

	evicted, err := rules.place(match, entity.PlayerO, cell)
	if err != nil {
		return fmt.Errorf("ai failed to make turn: %w", err)
	}

	outcome.AIMove = &cell
	outcome.AIEvicted = evicted

	return nil
}
