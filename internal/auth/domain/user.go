package domain

import (
	"strings"
	"time"
)

// Identity is the external-provider user. Email is the key for all per-user state.
type Identity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Key returns the normalized lookup key for this identity.
func (i Identity) Key() string {
	return NormalizeKey(i.Email)
}

// NormalizeKey lowercases and trims an email so lookups are case-insensitive.
func NormalizeKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DelegatedCredential holds the provider tokens for a user. Without a
// RefreshToken the access token cannot be renewed silently.
type DelegatedCredential struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry"`
}

// CanRefresh reports whether a refresh token is on file.
func (c *DelegatedCredential) CanRefresh() bool {
	return c != nil && c.RefreshToken != ""
}

// Expired reports whether the access token is past its expiry. A zero
// expiry means the provider did not say, and the token is assumed valid.
func (c *DelegatedCredential) Expired(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return true
	}
	return !c.Expiry.IsZero() && !now.Before(c.Expiry)
}

// Clone returns a deep copy so callers never share the stored value.
func (c *DelegatedCredential) Clone() *DelegatedCredential {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Scopes = append([]string(nil), c.Scopes...)
	return &cp
}

// Session ties an Identity to its credential. One per identity.
type Session struct {
	Identity   Identity             `json:"identity"`
	Credential *DelegatedCredential `json:"-"`
	IssuedAt   time.Time            `json:"issued_at"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Credential = s.Credential.Clone()
	return &cp
}
