package delivery

import (
	"errors"
	"net/http"
	"strings"

	authdomain "mailassist-backend/internal/auth/domain"
	"mailassist-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const (
	// ContextSessionKey holds the *authdomain.Session of the caller.
	ContextSessionKey = "session"
	// ContextUserKey holds the normalized identity key of the caller.
	ContextUserKey = "userKey"
)

func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		session, err := authUsecase.ValidateToken(parts[1])
		if err != nil {
			msg := "invalid or expired token"
			switch {
			case errors.Is(err, authdomain.ErrSessionExpired):
				msg = "Session expired. Please login again."
			case errors.Is(err, authdomain.ErrCredentialMissing):
				msg = "Google credentials not found. Please login again."
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Set(ContextUserKey, session.Identity.Key())
		c.Next()
	}
}

// CurrentSession returns the session stored by AuthMiddleware.
func CurrentSession(c *gin.Context) *authdomain.Session {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*authdomain.Session)
	return session
}

// StatusForError maps broker errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, authdomain.ErrCSRFMismatch):
		return http.StatusBadRequest
	case errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrCredentialMissing),
		errors.Is(err, authdomain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, authdomain.ErrAuthorizationExchange):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
