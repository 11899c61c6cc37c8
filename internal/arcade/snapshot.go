package arcade

type PlayerView struct {
	Y float64 `json:"y"`
}

type FireballView struct {
	ID              uint64      `json:"id"`
	X               float64     `json:"x"`
	Y               float64     `json:"y"`
	State           HazardState `json:"state"`
	ExtinguishTimer *float64    `json:"extinguish_timer,omitempty"`
}

// Snapshot is the state pushed to the client after every tick and accepted input.
type Snapshot struct {
	Score     int64          `json:"score"`
	GameOver  bool           `json:"game_over"`
	Player    PlayerView     `json:"player"`
	Fireballs []FireballView `json:"fireballs"`
}

func (that *Session) Snapshot() Snapshot {
	fireballs := make([]FireballView, 0, len(that.hazards))
	for _, hazard := range that.hazards {
		view := FireballView{
			ID:    hazard.ID,
			X:     hazard.X,
			Y:     hazard.Y,
			State: hazard.State,
		}
		if hazard.State == HazardExtinguishing {
			decay := max(hazard.Decay, 0)
			view.ExtinguishTimer = &decay
		}
		fireballs = append(fireballs, view)
	}

	return Snapshot{
		Score:     that.score,
		GameOver:  that.state == StateGameOver,
		Player:    PlayerView{Y: that.playerY},
		Fireballs: fireballs,
	}
}
