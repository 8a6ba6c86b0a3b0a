package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	authdomain "mailassist-backend/internal/auth/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(email, access, refresh string) *authdomain.Session {
	return &authdomain.Session{
		Identity: authdomain.Identity{ID: "g-" + email, Email: email},
		Credential: &authdomain.DelegatedCredential{
			AccessToken:  access,
			RefreshToken: refresh,
			Scopes:       []string{"gmail.readonly"},
		},
		IssuedAt: time.Now(),
	}
}

func TestSessionRepositoryUpsertReplaces(t *testing.T) {
	repo := NewSessionRepository()

	repo.Upsert(newSession("Ann@Example.com", "a1", "r1"))
	repo.Upsert(newSession("ann@example.com", "a2", "r2"))

	got := repo.FindByKey("ANN@example.com")
	require.NotNil(t, got)
	assert.Equal(t, "a2", got.Credential.AccessToken)
	assert.Equal(t, 1, repo.Count())
}

func TestSessionRepositoryReturnsCopies(t *testing.T) {
	repo := NewSessionRepository()
	in := newSession("ann@example.com", "a1", "r1")
	repo.Upsert(in)

	in.Credential.AccessToken = "mutated"
	got := repo.FindByKey("ann@example.com")
	got.Credential.Scopes[0] = "mutated"

	again := repo.FindByKey("ann@example.com")
	assert.Equal(t, "a1", again.Credential.AccessToken)
	assert.Equal(t, "gmail.readonly", again.Credential.Scopes[0])
}

func TestSessionRepositoryDeleteTwice(t *testing.T) {
	repo := NewSessionRepository()
	repo.Upsert(newSession("ann@example.com", "a1", ""))

	assert.True(t, repo.Delete("ann@example.com"))
	assert.False(t, repo.Delete("ann@example.com"))
	assert.Nil(t, repo.FindByKey("ann@example.com"))
}

func TestSessionRepositoryUpdateAccessToken(t *testing.T) {
	repo := NewSessionRepository()
	expiry := time.Now().Add(time.Hour)

	assert.False(t, repo.UpdateAccessToken("nobody@example.com", "x", expiry))

	repo.Upsert(newSession("ann@example.com", "a1", "r1"))
	assert.True(t, repo.UpdateAccessToken("ann@example.com", "a2", expiry))

	got := repo.FindByKey("ann@example.com")
	assert.Equal(t, "a2", got.Credential.AccessToken)
	assert.Equal(t, "r1", got.Credential.RefreshToken)
	assert.True(t, got.Credential.Expiry.Equal(expiry))
}

func TestSessionRepositoryConcurrentUpdates(t *testing.T) {
	repo := NewSessionRepository()
	repo.Upsert(newSession("ann@example.com", "a0", "r1"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			repo.UpdateAccessToken("ann@example.com", fmt.Sprintf("a%d", i), time.Now())
		}(i)
		go func() {
			defer wg.Done()
			_ = repo.FindByKey("ann@example.com")
		}()
	}
	wg.Wait()

	got := repo.FindByKey("ann@example.com")
	require.NotNil(t, got)
	assert.Equal(t, "r1", got.Credential.RefreshToken)
	assert.NotEmpty(t, got.Credential.AccessToken)
}

func TestStateRepositoryConsumeOnce(t *testing.T) {
	repo := NewStateRepository(time.Minute)

	token, err := repo.Mint()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.True(t, repo.Consume(token))
	assert.False(t, repo.Consume(token))
	assert.False(t, repo.Consume("never-minted"))
	assert.False(t, repo.Consume(""))
}

func TestStateRepositoryTokensAreUnique(t *testing.T) {
	repo := NewStateRepository(0)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := repo.Mint()
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestStateRepositoryExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newStateRepository(10*time.Minute, func() time.Time { return now })

	stale, err := repo.Mint()
	require.NoError(t, err)
	fresh, err := repo.Mint()
	require.NoError(t, err)

	now = now.Add(11 * time.Minute)
	assert.False(t, repo.Consume(stale))

	// minting prunes expired entries
	_, err = repo.Mint()
	require.NoError(t, err)
	assert.NotContains(t, repo.states, fresh)
}
