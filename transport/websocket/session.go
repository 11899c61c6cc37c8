package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gamehub-backend/internal/arcade"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
	"github.com/rocketscienceinc/gamehub-backend/internal/metrics"
)

const (
	inputBuffer    = 32
	maxMessageSize = 512
)

var errReplaced = errors.New("replaced by a newer connection")

type playerInput struct {
	Y *float64 `json:"y"`
}

// session owns one connection and its arcade game. Only run writes to conn.
type session struct {
	id     string
	user   entity.User
	conn   *websocket.Conn
	game   *arcade.Session
	config Config
	scores scoreSubmitter
	logger *slog.Logger
	input  chan float64

	metrics *metrics.Metrics
}

func (that *session) run(ctx context.Context) {
	log := that.logger.With("method", "run")

	defer that.conn.Close()

	if err := that.game.Start(); err != nil {
		log.Error("failed to start arcade session", "error", err)
		return
	}

	log.Info("arcade session started")

	readDone := make(chan struct{})
	go that.readLoop(readDone)

	ticker := time.NewTicker(that.config.TickInterval)
	defer ticker.Stop()

	ping := time.NewTicker(that.config.PingInterval)
	defer ping.Stop()

	if err := that.push(); err != nil {
		log.Warn("failed to push initial state", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			if errors.Is(context.Cause(ctx), errReplaced) {
				that.close(websocket.ClosePolicyViolation, errReplaced.Error())
			} else {
				that.close(websocket.CloseGoingAway, "server shutting down")
			}

			log.Info("arcade session closed", "cause", context.Cause(ctx))

			return

		case <-readDone:
			log.Info("client disconnected", "score", that.game.Score())
			return

		case y := <-that.input:
			if err := that.game.MovePlayer(y); err != nil {
				log.Debug("input rejected", "error", err)
				continue
			}

			if err := that.push(); err != nil {
				log.Warn("failed to push state", "error", err)
				return
			}

		case <-ticker.C:
			result := that.game.Tick()
			pushErr := that.push()

			if pushErr != nil {
				log.Warn("failed to push state", "error", pushErr)
			}

			// the score is recorded even when the client is already gone
			if result.GameOver {
				that.finish(ctx, pushErr == nil)
				return
			}

			if pushErr != nil {
				return
			}

		case <-ping.C:
			deadline := time.Now().Add(that.config.WriteTimeout)
			if err := that.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Warn("failed to ping client", "error", err)
				return
			}
		}
	}
}

// finish records the final score even if the server is shutting down meanwhile.
// The close frame is only sent while the connection still accepts writes.
func (that *session) finish(ctx context.Context, connAlive bool) {
	log := that.logger.With("method", "finish")

	score := that.game.Score()

	if err := that.scores.Submit(context.WithoutCancel(ctx), entity.GameDragonBall, that.user, score); err != nil {
		log.Error("failed to submit final score", "score", score, "error", err)
		if connAlive {
			that.close(websocket.CloseInternalServerErr, "score not recorded")
		}

		return
	}

	that.metrics.ArcadeFinished(score)
	log.Info("arcade session finished", "score", score)

	if connAlive {
		that.close(websocket.CloseNormalClosure, "game over")
	}
}

// readLoop parses player positions and hands them to run without ever blocking on it.
func (that *session) readLoop(done chan<- struct{}) {
	log := that.logger.With("method", "readLoop")

	defer close(done)

	pongWait := 2 * that.config.PingInterval

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("read failed", "error", err)
			}

			return
		}

		var msg playerInput
		if err := json.Unmarshal(data, &msg); err != nil || msg.Y == nil {
			log.Debug("malformed message ignored", "size", len(data))
			continue
		}

		select {
		case that.input <- *msg.Y:
		default:
			log.Debug("input dropped, session is busy")
		}
	}
}

func (that *session) push() error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(that.config.WriteTimeout)); err != nil {
		return err
	}

	return that.conn.WriteJSON(that.game.Snapshot())
}

func (that *session) close(code int, text string) {
	deadline := time.Now().Add(that.config.WriteTimeout)
	if err := that.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline); err != nil {
		that.logger.Debug("failed to send close frame", "error", err)
	}
}
