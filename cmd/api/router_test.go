package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authdomain "mailassist-backend/internal/auth/domain"
	authRepo "mailassist-backend/internal/auth/repository"
	authUsecase "mailassist-backend/internal/auth/usecase"
	chatRepo "mailassist-backend/internal/chat/repository"
	emaildomain "mailassist-backend/internal/email/domain"
	"mailassist-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIdentity struct{}

func (stubIdentity) AuthorizationURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (stubIdentity) ExchangeCode(ctx context.Context, code string) (*authdomain.DelegatedCredential, *authdomain.Identity, error) {
	return &authdomain.DelegatedCredential{AccessToken: "a"}, &authdomain.Identity{ID: "1", Email: "ann@example.com", Name: "Ann"}, nil
}

func (stubIdentity) RefreshAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error) {
	return "", time.Time{}, errors.New("no refresh")
}

type noMail struct{}

func (noMail) NewClient(ctx context.Context, accessToken, refreshToken string, expiry time.Time, onTokenRefresh emaildomain.TokenUpdateFunc) (emaildomain.MailClient, error) {
	return nil, errors.New("offline")
}

func newTestRouter(t *testing.T) (*gin.Engine, authUsecase.AuthUsecase, chatRepo.ConversationRepository) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		FrontendURL:      "http://front.test",
		AIProvider:       "ollama",
		OllamaBaseURL:    "http://127.0.0.1:1",
		OllamaModel:      "llama3",
		PipelineWorkers:  5,
		SummaryMaxChars:  10000,
		RetryMaxAttempts: 1,
	}
	authUc := authUsecase.NewAuthUsecase(
		authRepo.NewSessionRepository(),
		authRepo.NewStateRepository(time.Minute),
		stubIdentity{},
		authUsecase.NewJWTIssuer("secret", time.Hour),
	)
	conversations := chatRepo.NewConversationRepository()
	h := NewHandler(cfg, authUc, noMail{}, conversations, nil)
	return h.Router(), authUc, conversations
}

func TestHealthAndCORS(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/message", nil)
	req.Header.Set("Origin", "http://front.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://front.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/chat/message", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _, _ := newTestRouter(t)

	for _, path := range []string{"/api/chat/history", "/api/emails/recent"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLogoutDropsConversation(t *testing.T) {
	r, authUc, conversations := newTestRouter(t)

	begin, err := authUc.BeginAuthorization()
	require.NoError(t, err)
	login, err := authUc.CompleteAuthorization(context.Background(), "code", begin.State)
	require.NoError(t, err)
	conversations.SetRecentEmails("ann@example.com", []*emaildomain.MailSummary{{ID: "a"}})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, conversations.Snapshot("ann@example.com").HasRecentEmails())
}

func TestRecentEmailsRejectsBadLimit(t *testing.T) {
	r, authUc, _ := newTestRouter(t)

	begin, err := authUc.BeginAuthorization()
	require.NoError(t, err)
	login, err := authUc.CompleteAuthorization(context.Background(), "code", begin.State)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/emails/recent?limit=50", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
