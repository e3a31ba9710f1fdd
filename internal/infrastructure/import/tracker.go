package csvimport

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SessionTracker holds the cancel functions of import runs so an API
// request can stop a session running in another goroutine. Cancellation
// takes effect between rows; the runner records the final state itself.
type SessionTracker struct {
	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
}

// NewSessionTracker creates an empty tracker
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{
		cancels: make(map[uuid.UUID]context.CancelFunc),
	}
}

// Register derives a cancellable context for a session run and tracks its
// cancel function until Release is called.
func (t *SessionTracker) Register(parent context.Context, sessionID uuid.UUID) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	t.cancels[sessionID] = cancel
	t.mu.Unlock()

	return ctx, cancel
}

// Cancel cancels a tracked session run. It returns false when the session
// is not running in this process.
func (t *SessionTracker) Cancel(sessionID uuid.UUID) bool {
	t.mu.Lock()
	cancel, ok := t.cancels[sessionID]
	t.mu.Unlock()

	if !ok {
		return false
	}
	cancel()
	return true
}

// Release removes a finished session run. Runners defer this next to the
// cancel function itself.
func (t *SessionTracker) Release(sessionID uuid.UUID) {
	t.mu.Lock()
	delete(t.cancels, sessionID)
	t.mu.Unlock()
}

// IsRunning reports whether a session run is tracked in this process
func (t *SessionTracker) IsRunning(sessionID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.cancels[sessionID]
	return ok
}

// Len returns the number of tracked session runs
func (t *SessionTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cancels)
}
