package repository

import (
	"sync"
	"time"

	authdomain "mailassist-backend/internal/auth/domain"
)

// SessionRepository is the in-memory credential store. Every method is a
// single atomic map operation; values are copied in and out so callers can
// never mutate stored state.
type SessionRepository interface {
	// Upsert stores the session, replacing any prior one for the same identity.
	Upsert(session *authdomain.Session)
	// FindByKey returns a copy of the session, or nil.
	FindByKey(key string) *authdomain.Session
	// Delete removes the session and reports whether one existed.
	Delete(key string) bool
	// UpdateAccessToken replaces the stored access token in place. It reports
	// false when there is no session or no credential to update.
	UpdateAccessToken(key, accessToken string, expiry time.Time) bool
	// Count returns the number of live sessions.
	Count() int
}

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*authdomain.Session
}

// NewSessionRepository creates a new instance of sessionRepository
func NewSessionRepository() SessionRepository {
	return &sessionRepository{
		sessions: make(map[string]*authdomain.Session),
	}
}

func (r *sessionRepository) Upsert(session *authdomain.Session) {
	if session == nil {
		return
	}
	stored := session.Clone()

	r.mu.Lock()
	r.sessions[stored.Identity.Key()] = stored
	r.mu.Unlock()
}

func (r *sessionRepository) FindByKey(key string) *authdomain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[authdomain.NormalizeKey(key)].Clone()
}

func (r *sessionRepository) Delete(key string) bool {
	key = authdomain.NormalizeKey(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[key]; !ok {
		return false
	}
	delete(r.sessions, key)
	return true
}

func (r *sessionRepository) UpdateAccessToken(key, accessToken string, expiry time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[authdomain.NormalizeKey(key)]
	if !ok || session.Credential == nil {
		return false
	}
	session.Credential.AccessToken = accessToken
	session.Credential.Expiry = expiry
	return true
}

func (r *sessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
