package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"airbnb-dashboard/services"
)

type session struct {
	controls services.Controls
	lastSeen time.Time
}

// SessionStore keeps each visitor's controls, keyed by a random session id.
// Sessions idle for longer than the store's ttl are forgotten. It is safe for
// concurrent use.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*session
	defaults  services.Controls
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewSessionStore(defaults services.Controls, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*session),
		defaults:  defaults,
		ttl:       ttl,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// New starts a session with the default controls and returns its id. Expired
// sessions are swept first, at most once per ttl/10.
func (s *SessionStore) New() string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.ttl/10 {
		s.sweep(now)
	}
	s.sessions[id] = &session{controls: s.defaults, lastSeen: now}
	return id
}

// Touch reports whether id names a live session and marks it as seen.
func (s *SessionStore) Touch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.live(id, s.now())
	if ok {
		sess.lastSeen = s.now()
	}
	return ok
}

// Get returns the session's controls, or the defaults for an unknown or
// expired id.
func (s *SessionStore) Get(id string) services.Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.live(id, s.now()); ok {
		return sess.controls
	}
	return s.defaults
}

// Put replaces the session's controls.
func (s *SessionStore) Put(id string, c services.Controls) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &session{controls: c, lastSeen: s.now()}
}

// Len returns the number of stored sessions, including expired ones not yet
// swept.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// live returns the session for id unless it has expired, in which case it is
// dropped. Callers hold s.mu.
func (s *SessionStore) live(id string, now time.Time) (*session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	return sess, true
}

func (s *SessionStore) sweep(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
	s.lastSweep = now
}
