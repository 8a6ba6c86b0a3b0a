package main

import (
	"log"

	api "mailassist-backend/cmd/api"
	authRepo "mailassist-backend/internal/auth/repository"
	authUsecase "mailassist-backend/internal/auth/usecase"
	chatRepo "mailassist-backend/internal/chat/repository"
	emaildomain "mailassist-backend/internal/email/domain"
	emailRepo "mailassist-backend/internal/email/repository"
	"mailassist-backend/pkg/config"
	"mailassist-backend/pkg/database"
	"mailassist-backend/pkg/gmail"
	"mailassist-backend/pkg/googleauth"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		log.Printf("[WARN] GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET not set, login will fail")
	}

	// Optional summary cache
	var summaryRepo emailRepo.EmailSummaryRepository
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		if err := db.AutoMigrate(&emaildomain.EmailSummary{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		summaryRepo = emailRepo.NewEmailSummaryRepository(db)
		log.Println("Summary cache enabled")
	} else {
		log.Printf("[WARN] DATABASE_URL not set, summary cache disabled")
	}

	// In-memory stores live for the whole process
	sessionRepository := authRepo.NewSessionRepository()
	stateRepository := authRepo.NewStateRepository(cfg.CSRFStateTTL)
	conversationRepository := chatRepo.NewConversationRepository()

	googleProvider := googleauth.NewProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	gmailService := gmail.NewService(googleProvider.Config(), cfg.GmailBreakerTimeout)

	authUsecaseInstance := authUsecase.NewAuthUsecase(
		sessionRepository,
		stateRepository,
		googleProvider,
		authUsecase.NewJWTIssuer(cfg.JWTSecret, cfg.JWTAccessExpiry),
	)

	// Initialize HTTP handler
	handler := api.NewHandler(cfg, authUsecaseInstance, gmailService, conversationRepository, summaryRepo)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
