package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	authdomain "mailassist-backend/internal/auth/domain"
	authdto "mailassist-backend/internal/auth/dto"
	"mailassist-backend/internal/auth/repository"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	sessions repository.SessionRepository
	states   repository.StateRepository
	provider authdomain.IdentityProvider
	tokens   authdomain.TokenIssuer
	now      func() time.Time
	onLogout func(key string)
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(
	sessions repository.SessionRepository,
	states repository.StateRepository,
	provider authdomain.IdentityProvider,
	tokens authdomain.TokenIssuer,
) AuthUsecase {
	return &authUsecase{
		sessions: sessions,
		states:   states,
		provider: provider,
		tokens:   tokens,
		now:      time.Now,
	}
}

// SetLogoutCallback registers a hook run after a session is removed.
func (u *authUsecase) SetLogoutCallback(fn func(key string)) {
	u.onLogout = fn
}

func (u *authUsecase) BeginAuthorization() (*authdto.AuthorizationResponse, error) {
	state, err := u.states.Mint()
	if err != nil {
		return nil, fmt.Errorf("mint state token: %w", err)
	}

	return &authdto.AuthorizationResponse{
		AuthorizationURL: u.provider.AuthorizationURL(state),
		State:            state,
	}, nil
}

func (u *authUsecase) CompleteAuthorization(ctx context.Context, code, state string) (*authdto.TokenResponse, error) {
	// consumed before the exchange so a failed callback cannot be replayed
	if !u.states.Consume(state) {
		return nil, authdomain.ErrCSRFMismatch
	}

	cred, identity, err := u.provider.ExchangeCode(ctx, code)
	if err != nil {
		log.Printf("[Auth] Authorization exchange failed: %v", err)
		return nil, fmt.Errorf("%w: %w", authdomain.ErrAuthorizationExchange, err)
	}

	token, err := u.tokens.Issue(*identity)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	u.sessions.Upsert(&authdomain.Session{
		Identity:   *identity,
		Credential: cred,
		IssuedAt:   u.now(),
	})
	log.Printf("[Auth] Session established for %s (refresh token: %t)", identity.Email, cred.CanRefresh())

	return &authdto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        identity,
	}, nil
}

func (u *authUsecase) GetSession(key string) *authdomain.Session {
	return u.sessions.FindByKey(key)
}

// Refresh swaps the stored access token for a fresh one. It returns false,
// leaving the store untouched, when there is nothing to refresh with or the
// provider call fails.
func (u *authUsecase) Refresh(ctx context.Context, key string) (string, bool) {
	session := u.sessions.FindByKey(key)
	if session == nil || !session.Credential.CanRefresh() {
		return "", false
	}

	accessToken, expiry, err := u.provider.RefreshAccessToken(ctx, session.Credential.RefreshToken)
	if err != nil {
		log.Printf("[Auth] Token refresh failed for %s: %v", key, err)
		return "", false
	}

	if !u.sessions.UpdateAccessToken(key, accessToken, expiry) {
		// logged out while the provider call was in flight
		return "", false
	}
	return accessToken, true
}

func (u *authUsecase) Logout(key string) bool {
	existed := u.sessions.Delete(key)
	if existed && u.onLogout != nil {
		u.onLogout(authdomain.NormalizeKey(key))
	}
	return existed
}

func (u *authUsecase) ValidateToken(token string) (*authdomain.Session, error) {
	claims, err := u.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	session := u.sessions.FindByKey(claims.Email)
	if session == nil {
		return nil, authdomain.ErrSessionExpired
	}
	if session.Credential == nil || session.Credential.AccessToken == "" {
		return nil, authdomain.ErrCredentialMissing
	}
	return session, nil
}

func (u *authUsecase) Credential(ctx context.Context, key string) (*authdomain.DelegatedCredential, error) {
	session := u.sessions.FindByKey(key)
	if session == nil {
		return nil, authdomain.ErrSessionExpired
	}
	cred := session.Credential
	if cred == nil || cred.AccessToken == "" {
		return nil, authdomain.ErrCredentialMissing
	}
	if !cred.Expired(u.now()) {
		return cred, nil
	}

	if !cred.CanRefresh() {
		return nil, authdomain.ErrSessionExpired
	}
	if _, ok := u.Refresh(ctx, key); !ok {
		// the mail client still holds the refresh token and can retry
		return cred, nil
	}

	refreshed := u.sessions.FindByKey(key)
	if refreshed == nil || refreshed.Credential == nil {
		return nil, authdomain.ErrSessionExpired
	}
	return refreshed.Credential, nil
}

func (u *authUsecase) StoreRefreshedToken(key, accessToken string, expiry time.Time) error {
	if !u.sessions.UpdateAccessToken(key, accessToken, expiry) {
		return authdomain.ErrSessionExpired
	}
	return nil
}
