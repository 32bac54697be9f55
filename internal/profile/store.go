package profile

import "sync"

// Store keeps the active candidate of every live session.
// Each session owns exactly one slot, so concurrent interviews never observe
// each other's profile.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Candidate
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Candidate)}
}

// Set installs the candidate for the session. The last writer wins.
func (s *Store) Set(sessionID string, c *Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions == nil {
		s.sessions = make(map[string]*Candidate)
	}
	s.sessions[sessionID] = c
}

// Get returns the candidate of the session or nil when nothing was installed.
func (s *Store) Get(sessionID string) *Candidate {
	if s == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions[sessionID]
}

// Has reports whether the session is known, even without a candidate.
func (s *Store) Has(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[sessionID]
	return ok
}

func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
