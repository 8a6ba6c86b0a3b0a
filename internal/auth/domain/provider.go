package domain

import (
	"context"
	"time"
)

// IdentityProvider is the delegated-authorization provider (Google).
type IdentityProvider interface {
	// AuthorizationURL builds the consent redirect embedding state.
	AuthorizationURL(state string) string
	// ExchangeCode trades an authorization code for tokens and the user profile.
	ExchangeCode(ctx context.Context, code string) (*DelegatedCredential, *Identity, error)
	// RefreshAccessToken returns a fresh access token and its expiry.
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error)
}

// TokenClaims are the claims carried by the internal bearer token.
type TokenClaims struct {
	Email     string
	GoogleID  string
	Name      string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies internal bearer tokens.
type TokenIssuer interface {
	Issue(identity Identity) (string, error)
	Verify(token string) (*TokenClaims, error)
}
