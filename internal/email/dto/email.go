package dto

import emaildomain "mailassist-backend/internal/email/domain"

type RecentEmailsResponse struct {
	Emails []*emaildomain.MailSummary `json:"emails"`
	Count  int                        `json:"count"`
}

type GenerateReplyRequest struct {
	EmailID string `json:"email_id" binding:"required"`
}

type SendReplyRequest struct {
	EmailID      string `json:"email_id" binding:"required"`
	ReplyContent string `json:"reply_content" binding:"required"`
}

type ActionResponse struct {
	Success bool   `json:"success"`
	EmailID string `json:"email_id"`
	Message string `json:"message"`
}
