package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is an in-memory registry of conversation sessions keyed by session
// ID. Sessions are created at conversation start and discarded when the
// conversation ends; there is no durable persistence behind it.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   zerolog.Logger
}

// NewStore creates an empty session store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		logger:   logger.With().Str("component", "session-store").Logger(),
	}
}

// Create registers a new session in the welcome stage and returns it.
func (st *Store) Create() *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Stage:     StageWelcome,
		CreatedAt: now,
		UpdatedAt: now,
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	st.logger.Debug().Str("session_id", sess.ID).Msg("session created")

	return sess
}

// Get returns the session for the given ID, or nil if it does not exist.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// Delete removes a session from the store.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// PurgeIdle removes sessions with no activity for at least maxAge and
// returns how many were removed. Abandoned mid-payment conversations leave
// their order permanently pending; purging the session is the only cleanup
// the service performs, and only when an operator schedules it.
func (st *Store) PurgeIdle(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	st.mu.Lock()
	defer st.mu.Unlock()

	purged := 0
	for id, sess := range st.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(st.sessions, id)
			purged++
		}
	}

	if purged > 0 {
		st.logger.Info().Int("purged", purged).Msg("idle sessions purged")
	}

	return purged
}
