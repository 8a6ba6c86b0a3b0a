package usecase

import (
	"context"

	chatdomain "mailassist-backend/internal/chat/domain"
	emaildomain "mailassist-backend/internal/email/domain"
)

// ChatUsecase runs conversational turns over the per-user conversation.
type ChatUsecase interface {
	SendMessage(ctx context.Context, userKey, userName, message string) (*chatdomain.TurnResult, error)
	GetHistory(userKey string) []chatdomain.ChatMessage
	ClearHistory(userKey string)
	SetRecentEmails(userKey string, emails []*emaildomain.MailSummary) int
	DropConversation(userKey string)
}
