package websocket

import (
	"context"
	"sync"
)

type liveSession struct {
	id     string
	cancel context.CancelCauseFunc
}

// registry tracks the live session of each user so a newer connection replaces the older one.
type registry struct {
	mu       sync.Mutex
	sessions map[string]liveSession
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]liveSession)}
}

func (that *registry) replace(userID, sessionID string, cancel context.CancelCauseFunc) {
	that.mu.Lock()
	previous, ok := that.sessions[userID]
	that.sessions[userID] = liveSession{id: sessionID, cancel: cancel}
	that.mu.Unlock()

	if ok {
		previous.cancel(errReplaced)
	}
}

// release forgets the session unless a newer one already took its place.
func (that *registry) release(userID, sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.sessions[userID]; ok && current.id == sessionID {
		delete(that.sessions, userID)
	}
}

func (that *registry) count() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.sessions)
}
