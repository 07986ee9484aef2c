package chat

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/cook-with-ai/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStore holds one Session per signed-in user
type SessionStore struct {
	sessions map[uuid.UUID]*Session
	mu       sync.RWMutex // Protects concurrent access to sessions map
	idleTTL  time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewSessionStore creates a store. Sessions untouched for idleTTL are dropped by Start.
func NewSessionStore(idleTTL time.Duration, logger *zap.Logger, m *metrics.Metrics) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
		idleTTL:  idleTTL,
		logger:   logger,
		metrics:  m,
	}
}

// Get returns the user's session, creating it on first use
func (s *SessionStore) Get(userID uuid.UUID) *Session {
	// Read lock first for the common path
	s.mu.RLock()
	session, exists := s.sessions[userID]
	s.mu.RUnlock()
	if exists {
		session.mu.Lock()
		session.touch()
		session.mu.Unlock()
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have created it while we waited for the write lock
	if session, exists := s.sessions[userID]; exists {
		return session
	}
	session = NewSession(userID)
	s.sessions[userID] = session
	s.metrics.SetActiveSessions(len(s.sessions))
	return session
}

// Close forgets the user's session so the next sign-in starts fresh
func (s *SessionStore) Close(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	s.metrics.SetActiveSessions(len(s.sessions))
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle since before now-idleTTL and returns how many went
func (s *SessionStore) Sweep(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		if session.idleSince(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.metrics.SetActiveSessions(len(s.sessions))
	return removed
}

// Start sweeps idle sessions until ctx is cancelled
func (s *SessionStore) Start(ctx context.Context) {
	if s.idleTTL <= 0 {
		return
	}
	interval := s.idleTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := s.Sweep(now); n > 0 {
					s.logger.Info("chat_sessions_swept", zap.Int("removed", n), zap.Int("remaining", s.Len()))
				}
			}
		}
	}()
}
