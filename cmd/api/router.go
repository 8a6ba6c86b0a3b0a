package api

import (
	"net/http"

	"mailassist-backend/internal/auth/delivery"
	authUsecase "mailassist-backend/internal/auth/usecase"
	chatDelivery "mailassist-backend/internal/chat/delivery"
	emailDelivery "mailassist-backend/internal/email/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	authUsecase authUsecase.AuthUsecase,
	authHandler *delivery.AuthHandler,
	emailHandler *emailDelivery.EmailHandler,
	chatHandler *chatDelivery.ChatHandler,
) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.GET("/login", authHandler.Login)
			auth.GET("/login/url", authHandler.LoginURL)
			auth.GET("/callback", authHandler.Callback)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
			auth.POST("/refresh", delivery.AuthMiddleware(authUsecase), authHandler.Refresh)
			auth.POST("/logout", delivery.AuthMiddleware(authUsecase), authHandler.Logout)
		}

		// Chat routes (protected)
		chat := api.Group("/chat")
		chat.Use(delivery.AuthMiddleware(authUsecase))
		{
			chat.POST("/message", chatHandler.SendMessage)
			chat.GET("/history", chatHandler.GetHistory)
			chat.DELETE("/history", chatHandler.ClearHistory)
			chat.POST("/context/emails", chatHandler.UpdateEmailContext)
		}

		// Email routes (protected)
		emails := api.Group("/emails")
		emails.Use(delivery.AuthMiddleware(authUsecase))
		{
			emails.GET("/recent", emailHandler.GetRecentEmails)
			emails.POST("/generate-reply", emailHandler.GenerateReply)
			emails.POST("/send-reply", emailHandler.SendReply)
			emails.DELETE("/delete/:id", emailHandler.DeleteEmail)
		}
	}
}
