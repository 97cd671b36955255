package provisioning

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session lifetime constants.
const (
	// sessionTTL is how long an idle flow session survives before it is
	// reaped. An abandoned form simply expires; nothing was persisted.
	sessionTTL = 30 * time.Minute

	// cleanupInterval is how often expired sessions are reaped.
	cleanupInterval = 5 * time.Minute
)

// newSession creates a session starting at the given step.
func newSession(current StepID) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Current:   current,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
}

// putSession registers a session with the manager.
func (m *Manager) putSession(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
}

// session returns a live session by ID, refreshing its expiry.
// Returns ErrFlowNotFound for unknown or expired IDs.
func (m *Manager) session(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	if time.Now().After(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrFlowNotFound
	}

	s.ExpiresAt = time.Now().Add(sessionTTL)
	return s, nil
}

// dropSession discards a session.
func (m *Manager) dropSession(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// finish marks a session terminal and discards it. The caller holds the
// session lock; a submission that raced the terminal one then fails its
// step check instead of repeating the terminal side effects.
func (m *Manager) finish(s *Session) {
	s.Current = stepDone
	m.dropSession(s.ID)
}

// SessionCount returns the number of live sessions (for metrics/tests).
func (m *Manager) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartCleanup launches the background reaper for expired sessions.
// It returns immediately; the reaper stops when ctx is cancelled.
func (m *Manager) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.reapExpired()
			}
		}
	}()
}

// reapExpired removes all sessions past their expiry.
func (m *Manager) reapExpired() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
}
