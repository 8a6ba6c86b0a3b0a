package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	authdomain "mailassist-backend/internal/auth/domain"
	"mailassist-backend/internal/auth/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) AuthorizationURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code string) (*authdomain.DelegatedCredential, *authdomain.Identity, error) {
	args := m.Called(ctx, code)
	cred, _ := args.Get(0).(*authdomain.DelegatedCredential)
	identity, _ := args.Get(1).(*authdomain.Identity)
	return cred, identity, args.Error(2)
}

func (m *mockProvider) RefreshAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

var ann = &authdomain.Identity{ID: "g-1", Email: "ann@example.com", Name: "Ann"}

func newBroker(provider *mockProvider) (*authUsecase, repository.SessionRepository) {
	sessions := repository.NewSessionRepository()
	uc := NewAuthUsecase(sessions, repository.NewStateRepository(time.Minute), provider, NewJWTIssuer("secret", time.Hour))
	return uc.(*authUsecase), sessions
}

func login(t *testing.T, uc *authUsecase, provider *mockProvider, refreshToken string) string {
	t.Helper()
	begin, err := uc.BeginAuthorization()
	require.NoError(t, err)

	provider.On("ExchangeCode", mock.Anything, "code-"+begin.State).Return(&authdomain.DelegatedCredential{
		AccessToken:  "access-1",
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(time.Hour),
	}, ann, nil).Once()

	resp, err := uc.CompleteAuthorization(context.Background(), "code-"+begin.State, begin.State)
	require.NoError(t, err)
	return resp.AccessToken
}

func TestBeginAuthorizationEmbedsState(t *testing.T) {
	uc, _ := newBroker(new(mockProvider))

	resp, err := uc.BeginAuthorization()

	require.NoError(t, err)
	assert.NotEmpty(t, resp.State)
	assert.Contains(t, resp.AuthorizationURL, resp.State)
}

func TestCompleteAuthorizationSucceedsExactlyOnce(t *testing.T) {
	provider := new(mockProvider)
	uc, _ := newBroker(provider)

	begin, err := uc.BeginAuthorization()
	require.NoError(t, err)
	provider.On("ExchangeCode", mock.Anything, "code").Return(&authdomain.DelegatedCredential{AccessToken: "a", RefreshToken: "r"}, ann, nil).Once()

	resp, err := uc.CompleteAuthorization(context.Background(), "code", begin.State)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	assert.NotNil(t, uc.GetSession("ann@example.com"))

	_, err = uc.CompleteAuthorization(context.Background(), "code", begin.State)
	assert.ErrorIs(t, err, authdomain.ErrCSRFMismatch)
	provider.AssertNumberOfCalls(t, "ExchangeCode", 1)
}

func TestCompleteAuthorizationUnknownState(t *testing.T) {
	provider := new(mockProvider)
	uc, sessions := newBroker(provider)

	_, err := uc.CompleteAuthorization(context.Background(), "code", "forged")

	assert.ErrorIs(t, err, authdomain.ErrCSRFMismatch)
	assert.Equal(t, 0, sessions.Count())
	provider.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
}

func TestCompleteAuthorizationExchangeFailureLeavesNoSession(t *testing.T) {
	provider := new(mockProvider)
	uc, sessions := newBroker(provider)

	begin, err := uc.BeginAuthorization()
	require.NoError(t, err)
	provider.On("ExchangeCode", mock.Anything, "bad").Return(nil, nil, errors.New("invalid_grant"))

	_, err = uc.CompleteAuthorization(context.Background(), "bad", begin.State)

	assert.ErrorIs(t, err, authdomain.ErrAuthorizationExchange)
	assert.ErrorContains(t, err, "invalid_grant")
	assert.Equal(t, 0, sessions.Count())

	// the state was spent by the failed attempt
	_, err = uc.CompleteAuthorization(context.Background(), "bad", begin.State)
	assert.ErrorIs(t, err, authdomain.ErrCSRFMismatch)
}

func TestNewLoginReplacesPriorSession(t *testing.T) {
	provider := new(mockProvider)
	uc, sessions := newBroker(provider)

	login(t, uc, provider, "r1")
	login(t, uc, provider, "r2")

	assert.Equal(t, 1, sessions.Count())
	assert.Equal(t, "r2", uc.GetSession("ann@example.com").Credential.RefreshToken)
}

func TestRefreshWithoutRefreshTokenIsNoop(t *testing.T) {
	provider := new(mockProvider)
	uc, _ := newBroker(provider)
	login(t, uc, provider, "")

	token, ok := uc.Refresh(context.Background(), "ann@example.com")

	assert.False(t, ok)
	assert.Empty(t, token)
	assert.Equal(t, "access-1", uc.GetSession("ann@example.com").Credential.AccessToken)
	provider.AssertNotCalled(t, "RefreshAccessToken", mock.Anything, mock.Anything)

	_, ok = uc.Refresh(context.Background(), "nobody@example.com")
	assert.False(t, ok)
}

func TestRefreshUpdatesStoredToken(t *testing.T) {
	provider := new(mockProvider)
	uc, _ := newBroker(provider)
	login(t, uc, provider, "r1")
	expiry := time.Now().Add(time.Hour)
	provider.On("RefreshAccessToken", mock.Anything, "r1").Return("access-2", expiry, nil)

	token, ok := uc.Refresh(context.Background(), "ann@example.com")

	assert.True(t, ok)
	assert.Equal(t, "access-2", token)
	cred := uc.GetSession("ann@example.com").Credential
	assert.Equal(t, "access-2", cred.AccessToken)
	assert.Equal(t, "r1", cred.RefreshToken)
}

func TestRefreshProviderFailureKeepsToken(t *testing.T) {
	provider := new(mockProvider)
	uc, _ := newBroker(provider)
	login(t, uc, provider, "r1")
	provider.On("RefreshAccessToken", mock.Anything, "r1").Return("", time.Time{}, errors.New("provider down"))

	_, ok := uc.Refresh(context.Background(), "ann@example.com")

	assert.False(t, ok)
	assert.Equal(t, "access-1", uc.GetSession("ann@example.com").Credential.AccessToken)
}

func TestConcurrentRefreshIsSafe(t *testing.T) {
	provider := new(mockProvider)
	uc, _ := newBroker(provider)
	login(t, uc, provider, "r1")
	provider.On("RefreshAccessToken", mock.Anything, "r1").Return("access-2", time.Now().Add(time.Hour), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uc.Refresh(context.Background(), "ann@example.com")
		}()
	}
	wg.Wait()

	cred := uc.GetSession("ann@example.com").Credential
	assert.Equal(t, "access-2", cred.AccessToken)
	assert.Equal(t, "r1", cred.RefreshToken)
}

func TestLogoutTwice(t *testing.T) {
	provider := new(mockProvider)
	uc, _ := newBroker(provider)
	login(t, uc, provider, "r1")

	var dropped []string
	uc.SetLogoutCallback(func(key string) { dropped = append(dropped, key) })

	assert.True(t, uc.Logout("ann@example.com"))
	assert.Nil(t, uc.GetSession("ann@example.com"))
	assert.False(t, uc.Logout("ann@example.com"))
	assert.Nil(t, uc.GetSession("ann@example.com"))
	assert.Equal(t, []string{"ann@example.com"}, dropped)
}

func TestValidateToken(t *testing.T) {
	provider := new(mockProvider)
	uc, _ := newBroker(provider)
	token := login(t, uc, provider, "r1")

	session, err := uc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", session.Identity.Email)

	_, err = uc.ValidateToken("garbage")
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	uc.Logout("ann@example.com")
	_, err = uc.ValidateToken(token)
	assert.ErrorIs(t, err, authdomain.ErrSessionExpired)
}

func TestCredentialRefreshesExpiredToken(t *testing.T) {
	provider := new(mockProvider)
	uc, sessions := newBroker(provider)
	login(t, uc, provider, "r1")
	sessions.UpdateAccessToken("ann@example.com", "stale", time.Now().Add(-time.Minute))
	provider.On("RefreshAccessToken", mock.Anything, "r1").Return("fresh", time.Now().Add(time.Hour), nil).Once()

	cred, err := uc.Credential(context.Background(), "ann@example.com")

	require.NoError(t, err)
	assert.Equal(t, "fresh", cred.AccessToken)
}

func TestCredentialErrors(t *testing.T) {
	provider := new(mockProvider)
	uc, sessions := newBroker(provider)

	_, err := uc.Credential(context.Background(), "ann@example.com")
	assert.ErrorIs(t, err, authdomain.ErrSessionExpired)

	sessions.Upsert(&authdomain.Session{Identity: *ann})
	_, err = uc.Credential(context.Background(), "ann@example.com")
	assert.ErrorIs(t, err, authdomain.ErrCredentialMissing)

	sessions.Upsert(&authdomain.Session{Identity: *ann, Credential: &authdomain.DelegatedCredential{
		AccessToken: "old",
		Expiry:      time.Now().Add(-time.Minute),
	}})
	_, err = uc.Credential(context.Background(), "ann@example.com")
	assert.ErrorIs(t, err, authdomain.ErrSessionExpired)
}

func TestStoreRefreshedToken(t *testing.T) {
	provider := new(mockProvider)
	uc, _ := newBroker(provider)

	assert.ErrorIs(t, uc.StoreRefreshedToken("ann@example.com", "x", time.Now()), authdomain.ErrSessionExpired)

	login(t, uc, provider, "r1")
	require.NoError(t, uc.StoreRefreshedToken("ann@example.com", "from-client", time.Now().Add(time.Hour)))
	assert.Equal(t, "from-client", uc.GetSession("ann@example.com").Credential.AccessToken)
}

func TestJWTIssuerRejectsExpiredToken(t *testing.T) {
	issuer := NewJWTIssuer("secret", time.Minute).(*jwtIssuer)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Issue(*ann)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	other := NewJWTIssuer("other-secret", time.Hour)
	fresh, err := other.Issue(*ann)
	require.NoError(t, err)
	_, err = issuer.Verify(fresh)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}
