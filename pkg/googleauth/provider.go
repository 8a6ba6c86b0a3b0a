// Package googleauth implements the Google OAuth2 identity provider.
package googleauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	authdomain "mailassist-backend/internal/auth/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Scopes requested at consent time.
var Scopes = []string{
	gmail.GmailReadonlyScope,
	gmail.GmailSendScope,
	gmail.GmailModifyScope,
	oauth2api.UserinfoEmailScope,
	oauth2api.UserinfoProfileScope,
	oauth2api.OpenIDScope,
}

type Provider struct {
	config      *oauth2.Config
	profileOpts []option.ClientOption
}

// Option customizes a Provider.
type Option func(*Provider)

// WithEndpoint overrides the OAuth2 token and auth endpoints.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(p *Provider) { p.config.Endpoint = endpoint }
}

// WithProfileOptions adds client options for the userinfo call.
func WithProfileOptions(opts ...option.ClientOption) Option {
	return func(p *Provider) { p.profileOpts = append(p.profileOpts, opts...) }
}

func NewProvider(clientID, clientSecret, redirectURI string, opts ...Option) *Provider {
	p := &Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config exposes the oauth2 config so mail clients can refresh with the same client.
func (p *Provider) Config() *oauth2.Config {
	return p.config
}

// AuthorizationURL asks for offline access and forces the consent screen so
// Google always returns a refresh token.
func (p *Provider) AuthorizationURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *Provider) ExchangeCode(ctx context.Context, code string) (*authdomain.DelegatedCredential, *authdomain.Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("code exchange: %w", err)
	}

	opts := append([]option.ClientOption{option.WithTokenSource(p.config.TokenSource(ctx, token))}, p.profileOpts...)
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("fetch profile: %w", err)
	}
	if info.Email == "" {
		return nil, nil, fmt.Errorf("fetch profile: provider returned no email")
	}

	cred := &authdomain.DelegatedCredential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scopes:       grantedScopes(token, p.config.Scopes),
		Expiry:       token.Expiry,
	}
	identity := &authdomain.Identity{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}
	return cred, identity, nil
}

func (p *Provider) RefreshAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error) {
	// a token with only a refresh token is invalid, so the source refreshes
	token, err := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("refresh access token: %w", err)
	}
	return token.AccessToken, token.Expiry, nil
}

func grantedScopes(token *oauth2.Token, requested []string) []string {
	if raw, ok := token.Extra("scope").(string); ok && raw != "" {
		return strings.Fields(raw)
	}
	return append([]string(nil), requested...)
}
