package apperror

import "errors"

var (
	ErrGameFinished       = errors.New("game is already finished")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrCellEmpty          = errors.New("cell is empty")
	ErrInvalidCell        = errors.New("invalid cell index")
	ErrInsufficientPoints = errors.New("insufficient points for power-up")
	ErrBoardMismatch      = errors.New("submitted board does not match the current match")
	ErrModeMismatch       = errors.New("game mode cannot change during a match")
	ErrInvalidGameMode    = errors.New("unknown game mode")
	ErrNoAvailableMoves   = errors.New("no available moves")

	ErrGameOver    = errors.New("arcade session is over")
	ErrGameStarted = errors.New("arcade session already started")

	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenRevoked = errors.New("token has been revoked")

	ErrNotFound         = errors.New("not found")
	ErrInvalidGame      = errors.New("unknown game id")
	ErrStoreUnavailable = errors.New("store is unavailable")
)
