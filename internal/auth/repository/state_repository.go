package repository

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// StateRepository holds one-time CSRF state tokens for the OAuth callback.
type StateRepository interface {
	// Mint creates and registers a fresh unconsumed token.
	Mint() (string, error)
	// Consume removes the token and reports whether it was live.
	Consume(token string) bool
}

type stateRepository struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	states map[string]time.Time
}

// NewStateRepository creates a state store. Tokens older than ttl are treated
// as unknown; ttl <= 0 disables expiry.
func NewStateRepository(ttl time.Duration) StateRepository {
	return newStateRepository(ttl, time.Now)
}

func newStateRepository(ttl time.Duration, now func() time.Time) *stateRepository {
	return &stateRepository{
		ttl:    ttl,
		now:    now,
		states: make(map[string]time.Time),
	}
}

func (r *stateRepository) Mint() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.pruneLocked(now)
	r.states[token] = now
	return token, nil
}

func (r *stateRepository) Consume(token string) bool {
	if token == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	mintedAt, ok := r.states[token]
	if !ok {
		return false
	}
	delete(r.states, token)
	return !r.expired(mintedAt, r.now())
}

func (r *stateRepository) pruneLocked(now time.Time) {
	for token, mintedAt := range r.states {
		if r.expired(mintedAt, now) {
			delete(r.states, token)
		}
	}
}

func (r *stateRepository) expired(mintedAt, now time.Time) bool {
	return r.ttl > 0 && now.Sub(mintedAt) > r.ttl
}
