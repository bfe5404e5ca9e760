package syncer

import (
	"context"
	"sync"

	"github.com/playsync/playsync/internal/models"
)

// syncToken is the cancellation handle for one running sync.
type syncToken struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// tokenManager tracks at most one active sync per playlist. Acquiring a
// token for a playlist that already has one cancels the running sync and
// waits for it to settle before the new sync proceeds. The staging owner
// id is deterministic per playlist, so two syncs must never overlap:
// the old sync's cleanup would otherwise race the new sync's writes.
type tokenManager struct {
	mu     sync.Mutex
	tokens map[models.ULID]*syncToken
}

func newTokenManager() *tokenManager {
	return &tokenManager{
		tokens: make(map[models.ULID]*syncToken),
	}
}

// acquire registers a new token for the playlist, superseding any running
// sync. The returned token's context is derived from parent.
func (m *tokenManager) acquire(parent context.Context, id models.ULID) *syncToken {
	for {
		m.mu.Lock()
		old, exists := m.tokens[id]
		if !exists {
			ctx, cancel := context.WithCancel(parent)
			tok := &syncToken{ctx: ctx, cancel: cancel, done: make(chan struct{})}
			m.tokens[id] = tok
			m.mu.Unlock()
			return tok
		}
		old.cancel()
		m.mu.Unlock()
		<-old.done
	}
}

// cancel cancels the active sync for the playlist, if any. It reports
// whether a sync was running.
func (m *tokenManager) cancel(id models.ULID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tok, exists := m.tokens[id]
	if !exists {
		return false
	}
	tok.cancel()
	return true
}

// release retires the token when its sync has fully settled, including
// terminal status writes and staging cleanup.
func (m *tokenManager) release(id models.ULID, tok *syncToken) {
	m.mu.Lock()
	if current, exists := m.tokens[id]; exists && current == tok {
		delete(m.tokens, id)
	}
	m.mu.Unlock()

	tok.cancel()
	close(tok.done)
}

// active reports whether a sync is currently registered for the playlist.
func (m *tokenManager) active(id models.ULID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.tokens[id]
	return exists
}
