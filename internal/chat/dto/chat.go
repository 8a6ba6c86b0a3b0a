package dto

import (
	"time"

	chatdomain "mailassist-backend/internal/chat/domain"
	emaildomain "mailassist-backend/internal/email/domain"
)

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type ChatResponse struct {
	Message   string                          `json:"message"`
	Intent    chatdomain.IntentClassification `json:"intent"`
	Action    string                          `json:"action,omitempty"`
	Target    string                          `json:"target,omitempty"`
	Timestamp time.Time                       `json:"timestamp"`
}

type HistoryResponse struct {
	Messages []chatdomain.ChatMessage `json:"messages"`
	Total    int                      `json:"total"`
}

type EmailContextRequest struct {
	Emails []*emaildomain.MailSummary `json:"emails"`
}
