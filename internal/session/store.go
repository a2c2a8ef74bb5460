package session

import (
	"sync"
	"time"
)

const defaultTTL = 30 * time.Minute

// Store keeps sessions in memory for the life of the process. Each session has
// its own lock so a long search in one session does not block the others.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	mu      sync.Mutex
	session Session
	touched time.Time
}

// NewStore creates a store that forgets sessions idle for longer than ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Load returns the session for id, creating a new one (with a new ID) when
// id is unknown or expired.
func (s *Store) Load(id string) Session {
	e := s.lookup(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Update applies fn to the session for id and stores the result. fn runs under
// the session's lock; calls for the same session are serialized.
func (s *Store) Update(id string, fn func(Session) Session) Session {
	e := s.lookup(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	next := fn(e.session)
	next.ID = e.session.ID
	e.session = next
	return next
}

// Delete forgets a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune forgets expired sessions and reports how many were removed.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.sessions)
	s.pruneLocked(s.now())
	return before - len(s.sessions)
}

func (s *Store) lookup(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if e, ok := s.sessions[id]; ok {
		e.touched = now
		return e
	}

	sess := New()
	e := &entry{session: sess, touched: now}
	s.sessions[sess.ID] = e
	return e
}

func (s *Store) pruneLocked(now time.Time) {
	for id, e := range s.sessions {
		if now.Sub(e.touched) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
