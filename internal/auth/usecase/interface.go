package usecase

import (
	"context"
	"time"

	authdomain "mailassist-backend/internal/auth/domain"
	authdto "mailassist-backend/internal/auth/dto"
)

// AuthUsecase is the session broker: login, callback, refresh and logout
// over the in-memory credential store.
type AuthUsecase interface {
	BeginAuthorization() (*authdto.AuthorizationResponse, error)
	CompleteAuthorization(ctx context.Context, code, state string) (*authdto.TokenResponse, error)
	GetSession(key string) *authdomain.Session
	Refresh(ctx context.Context, key string) (string, bool)
	Logout(key string) bool
	ValidateToken(token string) (*authdomain.Session, error)

	// Credential returns a usable credential, refreshing an expired access
	// token first when a refresh token is on file.
	Credential(ctx context.Context, key string) (*authdomain.DelegatedCredential, error)
	// StoreRefreshedToken records a token refreshed outside the broker.
	StoreRefreshedToken(key, accessToken string, expiry time.Time) error

	SetLogoutCallback(fn func(key string))
}
