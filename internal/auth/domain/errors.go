package domain

import "errors"

var (
	// ErrCSRFMismatch means the callback state is unknown, expired or already used.
	ErrCSRFMismatch = errors.New("invalid or already used state token")
	// ErrAuthorizationExchange wraps identity provider failures during login.
	ErrAuthorizationExchange = errors.New("authorization exchange failed")
	// ErrSessionExpired means no session exists for the bearer identity.
	ErrSessionExpired = errors.New("session expired")
	// ErrCredentialMissing means the session has no usable provider credential.
	ErrCredentialMissing = errors.New("google credentials not found")
	// ErrInvalidToken means the internal bearer token failed verification.
	ErrInvalidToken = errors.New("invalid or expired token")
)
