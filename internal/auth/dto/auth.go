package dto

import authdomain "mailassist-backend/internal/auth/domain"

type AuthorizationResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

type TokenResponse struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	User        *authdomain.Identity `json:"user"`
}

type RefreshResponse struct {
	AccessTokenRefreshed bool `json:"access_token_refreshed"`
}

type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}
