package server

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// SessionManager tracks live sessions and enforces the session limit.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	maxSessions int

	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peakSessions int

	onSessionCreate func(*Session)
	onSessionClose  func(*Session)

	logger *slog.Logger
}

// NewSessionManager creates a manager. maxSessions <= 0 means no limit.
func NewSessionManager(maxSessions int, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		logger:      logger,
	}
}

// Add registers a session. It returns ErrMaxSessionsReached when full.
// The session is removed automatically when it closes.
func (sm *SessionManager) Add(s *Session) error {
	sm.mu.Lock()
	if sm.maxSessions > 0 && len(sm.sessions) >= sm.maxSessions {
		sm.mu.Unlock()
		return ErrMaxSessionsReached
	}
	sm.sessions[s.ID] = s
	if n := len(sm.sessions); n > sm.peakSessions {
		sm.peakSessions = n
	}
	onCreate := sm.onSessionCreate
	sm.mu.Unlock()

	sm.totalCreated.Add(1)
	s.OnClose(func() { sm.remove(s) })
	if onCreate != nil {
		onCreate(s)
	}
	return nil
}

func (sm *SessionManager) remove(s *Session) {
	sm.mu.Lock()
	_, ok := sm.sessions[s.ID]
	delete(sm.sessions, s.ID)
	onClose := sm.onSessionClose
	sm.mu.Unlock()

	if !ok {
		return
	}
	sm.totalClosed.Add(1)
	if onClose != nil {
		onClose(s)
	}
}

// Get returns a session by ID, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Close closes the session with the given ID.
func (sm *SessionManager) Close(id string) {
	if s := sm.Get(id); s != nil {
		s.Close()
	}
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ForEach calls fn for each session until fn returns false.
func (sm *SessionManager) ForEach(fn func(*Session) bool) {
	sm.mu.RLock()
	list := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		list = append(list, s)
	}
	sm.mu.RUnlock()

	for _, s := range list {
		if !fn(s) {
			return
		}
	}
}

// SetOnSessionCreate sets a callback for new sessions.
func (sm *SessionManager) SetOnSessionCreate(fn func(*Session)) {
	sm.mu.Lock()
	sm.onSessionCreate = fn
	sm.mu.Unlock()
}

// SetOnSessionClose sets a callback for closed sessions.
func (sm *SessionManager) SetOnSessionClose(fn func(*Session)) {
	sm.mu.Lock()
	sm.onSessionClose = fn
	sm.mu.Unlock()
}

// Shutdown closes every session.
func (sm *SessionManager) Shutdown() {
	sm.ForEach(func(s *Session) bool {
		s.Close()
		return true
	})
	sm.logger.Info("sessions closed", "total_created", sm.totalCreated.Load(), "total_closed", sm.totalClosed.Load())
}

// ManagerStats contains session manager statistics.
type ManagerStats struct {
	Active       int
	Peak         int
	TotalCreated uint64
	TotalClosed  uint64
}

// Stats returns manager statistics.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		Peak:         sm.peakSessions,
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
	}
}
