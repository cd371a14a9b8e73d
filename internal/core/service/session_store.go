package service

import (
	"sync"
	"time"

	"github.com/standmarket/marketplace/internal/core/domain"
)

type storedState struct {
	state domain.SessionState
	at    time.Time
}

// SessionStore holds the live session state of every client key. The last
// write for a key wins.
type SessionStore struct {
	mu     sync.RWMutex
	states map[string]storedState
	now    func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{states: make(map[string]storedState), now: time.Now}
}

func (s *SessionStore) Get(clientKey string) (domain.SessionState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[clientKey]
	return st.state, ok
}

// GetFresh is Get restricted to states written within maxAge.
func (s *SessionStore) GetFresh(clientKey string, maxAge time.Duration) (domain.SessionState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[clientKey]
	if !ok || s.now().Sub(st.at) > maxAge {
		return domain.SessionState{}, false
	}
	return st.state, true
}

func (s *SessionStore) Set(clientKey string, state domain.SessionState) {
	if clientKey == "" {
		return
	}
	s.mu.Lock()
	s.states[clientKey] = storedState{state: state, at: s.now()}
	s.mu.Unlock()
}

func (s *SessionStore) Clear(clientKey string) {
	s.mu.Lock()
	delete(s.states, clientKey)
	s.mu.Unlock()
}

// PruneIdle drops states not written for longer than idle and returns how
// many were removed.
func (s *SessionStore) PruneIdle(idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, st := range s.states {
		if st.at.Before(cutoff) {
			delete(s.states, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked clients.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
