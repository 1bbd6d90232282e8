package ui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// SessionStore keeps sessions in memory, keyed by a random id.
type SessionStore struct {
	gen Generator
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(gen Generator, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		gen:      gen,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id and marks it as seen.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if ok {
		s.touch(st.now())
	}
	return s, ok
}

// Create registers a new session and returns its id.
func (st *SessionStore) Create() (string, *Session) {
	id := uuid.NewString()
	s := NewSession(st.gen)
	s.touch(st.now())

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return id, s
}

// GetOrCreate returns the session for id, creating a fresh one when id is
// unknown. created reports whether a new id was issued.
func (st *SessionStore) GetOrCreate(id string) (sessionID string, s *Session, created bool) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return id, s, false
		}
	}
	sessionID, s = st.Create()
	return sessionID, s, true
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than the TTL and cancels their cycles.
func (st *SessionStore) Sweep() int {
	now := st.now()

	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = st.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				slog.Debug("Evicted idle sessions", "count", n)
			}
		}
	}
}

// CloseAll cancels every running cycle.
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.sessions {
		s.Close()
	}
}
