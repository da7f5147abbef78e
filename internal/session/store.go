// Package session owns the login/logout state machine and the installed
// Session shared by every in-flight request.
package session

import (
	"sync"

	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

// Store holds the currently installed session, or none. Installing and
// clearing are the only mutations; reads happen on every request, so access
// is guarded for concurrent use.
type Store struct {
	mu      sync.RWMutex
	session *iics.Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the installed session, or nil.
func (s *Store) Get() *iics.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session
}

// Set installs a session, replacing any prior one wholesale.
func (s *Store) Set(session *iics.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
}

// Clear removes the installed session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
}
