package delivery

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	authdomain "mailassist-backend/internal/auth/domain"
	authdto "mailassist-backend/internal/auth/dto"
	"mailassist-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	frontendURL string
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
	}
}

// Login redirects the browser to the provider consent page.
func (h *AuthHandler) Login(c *gin.Context) {
	resp, err := h.authUsecase.BeginAuthorization()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, resp.AuthorizationURL)
}

// LoginURL returns the consent URL for clients that redirect themselves.
func (h *AuthHandler) LoginURL(c *gin.Context) {
	resp, err := h.authUsecase.BeginAuthorization()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Callback(c *gin.Context) {
	if providerErr := c.Query("error"); providerErr != "" {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error="+url.QueryEscape(providerErr))
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	resp, err := h.authUsecase.CompleteAuthorization(c.Request.Context(), code, state)
	if err != nil {
		if errors.Is(err, authdomain.ErrCSRFMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state parameter"})
			return
		}
		log.Printf("[Auth] Callback failed: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error=auth_failed")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/callback?token="+url.QueryEscape(resp.AccessToken))
}

func (h *AuthHandler) Me(c *gin.Context) {
	session := CurrentSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, session.Identity)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	_, ok := h.authUsecase.Refresh(c.Request.Context(), c.GetString(ContextUserKey))
	c.JSON(http.StatusOK, authdto.RefreshResponse{AccessTokenRefreshed: ok})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ok := h.authUsecase.Logout(c.GetString(ContextUserKey))
	c.JSON(http.StatusOK, authdto.LogoutResponse{LoggedOut: ok})
}
