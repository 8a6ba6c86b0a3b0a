package delivery

import (
	"errors"
	"net/http"

	authdelivery "mailassist-backend/internal/auth/delivery"
	chatdto "mailassist-backend/internal/chat/dto"
	"mailassist-backend/internal/chat/usecase"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
}

func NewChatHandler(chatUsecase usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req chatdto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := ""
	if session := authdelivery.CurrentSession(c); session != nil {
		name = session.Identity.Name
	}

	turn, err := h.chatUsecase.SendMessage(c.Request.Context(), c.GetString(authdelivery.ContextUserKey), name, req.Message)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrEmptyMessage) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, chatdto.ChatResponse{
		Message:   turn.Message,
		Intent:    turn.Intent,
		Action:    turn.Action,
		Target:    turn.Target,
		Timestamp: turn.Timestamp,
	})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	messages := h.chatUsecase.GetHistory(c.GetString(authdelivery.ContextUserKey))
	c.JSON(http.StatusOK, chatdto.HistoryResponse{Messages: messages, Total: len(messages)})
}

func (h *ChatHandler) ClearHistory(c *gin.Context) {
	h.chatUsecase.ClearHistory(c.GetString(authdelivery.ContextUserKey))
	c.JSON(http.StatusOK, gin.H{"message": "Chat history cleared"})
}

// UpdateEmailContext replaces the cached recent emails the assistant refers to.
func (h *ChatHandler) UpdateEmailContext(c *gin.Context) {
	var req chatdto.EmailContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count := h.chatUsecase.SetRecentEmails(c.GetString(authdelivery.ContextUserKey), req.Emails)
	c.JSON(http.StatusOK, gin.H{"message": "Email context updated", "count": count})
}
