// Package arcade simulates one dragonball session: fireballs fly from the dragon
// towards the player's boundary line and the player sprays them out.
package arcade

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
)

var (
	ErrNotStarted      = errors.New("session is not started")
	ErrInvalidPosition = errors.New("invalid player position")
)

type State int

const (
	StateConnecting State = iota
	StateActive
	StateGameOver
)

func (that State) String() string {
	switch that {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("state(%d)", int(that))
	}
}

type HazardState string

const (
	HazardActive        HazardState = "Active"
	HazardExtinguishing HazardState = "Extinguishing"
)

type Hazard struct {
	ID    uint64
	X     float64
	Y     float64
	VX    float64
	VY    float64
	State HazardState
	// Decay goes from 1 to 0 while extinguishing.
	Decay float64
}

type Config struct {
	Height         float64
	BoundaryX      float64
	SpawnX         float64
	SpawnYMin      float64
	SpawnYMax      float64
	AimYMin        float64
	AimYMax        float64
	BaseSpeed      float64
	SpeedPerPoint  float64
	SprayRange     float64
	SprayHalfAngle float64
	SpawnChance    float64
	DecayPerTick   float64
	Reward         int64
	PlayerStartY   float64
}

func DefaultConfig() Config {
	return Config{
		Height:         600,
		BoundaryX:      750,
		SpawnX:         50,
		SpawnYMin:      100,
		SpawnYMax:      500,
		AimYMin:        50,
		AimYMax:        550,
		BaseSpeed:      3,
		SpeedPerPoint:  0.1,
		SprayRange:     300,
		SprayHalfAngle: 0.5,
		SpawnChance:    0.02,
		DecayPerTick:   0.05,
		Reward:         10,
		PlayerStartY:   300,
	}
}

type Random interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() } //nolint: gosec // gameplay randomness

// TickResult describes what a single tick changed.
type TickResult struct {
	Spawned      bool
	Extinguished int
	// GameOver is true only on the tick that ended the session.
	GameOver bool
}

// Session is not safe for concurrent use; the owner serializes ticks and input.
type Session struct {
	config  Config
	random  Random
	state   State
	score   int64
	playerY float64
	hazards []*Hazard
	lastID  uint64
}

func New(config Config, random Random) *Session {
	if random == nil {
		random = globalRandom{}
	}

	return &Session{
		config:  config,
		random:  random,
		state:   StateConnecting,
		playerY: config.PlayerStartY,
		hazards: make([]*Hazard, 0),
	}
}

func (that *Session) Start() error {
	if that.state != StateConnecting {
		return fmt.Errorf("%w: session is %s", apperror.ErrGameStarted, that.state)
	}

	that.state = StateActive

	return nil
}

func (that *Session) State() State {
	return that.state
}

func (that *Session) Score() int64 {
	return that.score
}

// MovePlayer updates the player position, clamped to the playable range. It never scores or ends the game.
func (that *Session) MovePlayer(y float64) error {
	switch that.state {
	case StateConnecting:
		return ErrNotStarted
	case StateGameOver:
		return apperror.ErrGameOver
	}

	if math.IsNaN(y) || math.IsInf(y, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidPosition, y)
	}

	that.playerY = min(max(y, 0), that.config.Height)

	return nil
}

// Tick advances the simulation by one step. After game over it is a no-op.
func (that *Session) Tick() TickResult {
	var result TickResult

	if that.state != StateActive {
		return result
	}

	result.Spawned = that.maybeSpawn()

	crossed := false
	for _, hazard := range that.hazards {
		if hazard.State == HazardExtinguishing {
			hazard.Decay -= that.config.DecayPerTick
			continue
		}

		hazard.X += hazard.VX
		hazard.Y += hazard.VY

		if hazard.X > that.config.BoundaryX {
			crossed = true
			continue
		}

		if that.inSpray(hazard) {
			hazard.State = HazardExtinguishing
			that.score += that.config.Reward
			result.Extinguished++
		}
	}

	live := that.hazards[:0]
	for _, hazard := range that.hazards {
		if hazard.State == HazardActive || hazard.Decay > 0 {
			live = append(live, hazard)
		}
	}
	clear(that.hazards[len(live):])
	that.hazards = live

	if crossed {
		that.state = StateGameOver
		result.GameOver = true
	}

	return result
}

func (that *Session) maybeSpawn() bool {
	if that.random.Float64() >= that.config.SpawnChance {
		return false
	}

	startY := between(that.random.Float64(), that.config.SpawnYMin, that.config.SpawnYMax)
	aimY := between(that.random.Float64(), that.config.AimYMin, that.config.AimYMax)

	dx := that.config.BoundaryX
	dy := aimY - startY
	distance := math.Hypot(dx, dy)
	speed := that.config.BaseSpeed + float64(that.score)*that.config.SpeedPerPoint

	that.lastID++
	that.hazards = append(that.hazards, &Hazard{
		ID:    that.lastID,
		X:     that.config.SpawnX,
		Y:     startY,
		VX:    dx / distance * speed,
		VY:    dy / distance * speed,
		State: HazardActive,
		Decay: 1,
	})

	return true
}

// inSpray reports whether the hazard is within range of the player's leftward spray cone.
func (that *Session) inSpray(hazard *Hazard) bool {
	dx := hazard.X - that.config.BoundaryX
	dy := hazard.Y - that.playerY

	if dx >= 0 || math.Hypot(dx, dy) >= that.config.SprayRange {
		return false
	}

	angle := math.Abs(math.Atan2(dy, dx))

	return math.Abs(math.Pi-angle) < that.config.SprayHalfAngle
}

func between(roll, low, high float64) float64 {
	return low + roll*(high-low)
}
