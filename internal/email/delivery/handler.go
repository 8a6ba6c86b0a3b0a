package delivery

import (
	"errors"
	"net/http"
	"strconv"

	authdelivery "mailassist-backend/internal/auth/delivery"
	emaildomain "mailassist-backend/internal/email/domain"
	emaildto "mailassist-backend/internal/email/dto"
	"mailassist-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 20
)

type EmailHandler struct {
	emailUsecase usecase.EmailUsecase
}

func NewEmailHandler(emailUsecase usecase.EmailUsecase) *EmailHandler {
	return &EmailHandler{
		emailUsecase: emailUsecase,
	}
}

func statusForError(err error) int {
	if errors.Is(err, emaildomain.ErrProviderUnavailable) {
		return http.StatusBadGateway
	}
	return authdelivery.StatusForError(err)
}

// GetRecentEmails fetches and summarizes the latest inbox messages.
func (h *EmailHandler) GetRecentEmails(c *gin.Context) {
	userKey := c.GetString(authdelivery.ContextUserKey)

	limit := defaultRecentLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > maxRecentLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 20"})
			return
		}
		limit = parsed
	}

	emails, err := h.emailUsecase.FetchRecentEmails(c.Request.Context(), userKey, limit)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emaildto.RecentEmailsResponse{Emails: emails, Count: len(emails)})
}

func (h *EmailHandler) GenerateReply(c *gin.Context) {
	var req emaildto.GenerateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.emailUsecase.GenerateReply(c.Request.Context(), c.GetString(authdelivery.ContextUserKey), req.EmailID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (h *EmailHandler) SendReply(c *gin.Context) {
	var req emaildto.SendReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.emailUsecase.SendReply(c.Request.Context(), c.GetString(authdelivery.ContextUserKey), req.EmailID, req.ReplyContent)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusBadGateway, emaildto.ActionResponse{EmailID: req.EmailID, Message: "Failed to send reply"})
		return
	}

	c.JSON(http.StatusOK, emaildto.ActionResponse{Success: true, EmailID: req.EmailID, Message: "Reply sent successfully"})
}

func (h *EmailHandler) DeleteEmail(c *gin.Context) {
	emailID := c.Param("id")

	ok, err := h.emailUsecase.DeleteEmail(c.Request.Context(), c.GetString(authdelivery.ContextUserKey), emailID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusBadGateway, emaildto.ActionResponse{EmailID: emailID, Message: "Failed to delete email"})
		return
	}

	c.JSON(http.StatusOK, emaildto.ActionResponse{Success: true, EmailID: emailID, Message: "Email moved to trash"})
}
