package usecase

import (
	"context"
	"time"

	authdomain "mailassist-backend/internal/auth/domain"
	emaildomain "mailassist-backend/internal/email/domain"
)

// EmailUsecase defines the mailbox operations exposed to the chat layer and HTTP.
type EmailUsecase interface {
	FetchRecentEmails(ctx context.Context, userKey string, limit int) ([]*emaildomain.MailSummary, error)
	GenerateReply(ctx context.Context, userKey, emailID string) (*emaildomain.GeneratedReply, error)
	SendReply(ctx context.Context, userKey, emailID, text string) (bool, error)
	DeleteEmail(ctx context.Context, userKey, emailID string) (bool, error)
}

// CredentialSource hands out the signed-in user's delegated credential.
type CredentialSource interface {
	Credential(ctx context.Context, key string) (*authdomain.DelegatedCredential, error)
	StoreRefreshedToken(key, accessToken string, expiry time.Time) error
}

// ConversationCache receives the results the chat layer keeps per user.
type ConversationCache interface {
	SetRecentEmails(userKey string, emails []*emaildomain.MailSummary)
	AddGeneratedReply(userKey string, reply *emaildomain.GeneratedReply)
	RemoveRecentEmail(userKey, emailID string)
}

// ReplyGenerator drafts a reply body.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, subject, sender, body string) (string, error)
}
