package api

import (
	"log"
	"net/http"
	"strings"

	authDelivery "mailassist-backend/internal/auth/delivery"
	authUsecase "mailassist-backend/internal/auth/usecase"
	chatDelivery "mailassist-backend/internal/chat/delivery"
	chatRepo "mailassist-backend/internal/chat/repository"
	chatUsecasePkg "mailassist-backend/internal/chat/usecase"
	emaildomain "mailassist-backend/internal/email/domain"
	emailDelivery "mailassist-backend/internal/email/delivery"
	emailRepo "mailassist-backend/internal/email/repository"
	emailUsecasePkg "mailassist-backend/internal/email/usecase"
	"mailassist-backend/pkg/ai"
	"mailassist-backend/pkg/config"
	"mailassist-backend/pkg/retry"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase  authUsecase.AuthUsecase
	config       *config.Config
	authHandler  *authDelivery.AuthHandler
	emailHandler *emailDelivery.EmailHandler
	chatHandler  *chatDelivery.ChatHandler
}

// NewHandler builds the AI services, the mail pipeline and the chat layer on
// top of the auth broker and mail provider. summaryRepo may be nil.
func NewHandler(
	cfg *config.Config,
	authUc authUsecase.AuthUsecase,
	mailProvider emaildomain.MailProvider,
	conversations chatRepo.ConversationRepository,
	summaryRepo emailRepo.EmailSummaryRepository,
) *Handler {
	completion, err := ai.NewCompletionService(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		APIKey:        cfg.LLMAPIKey,
		BaseURL:       cfg.LLMBaseURL,
		Model:         cfg.LLMModel,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Printf("[WARN] Failed to initialize AI provider %q: %v. Falling back to Ollama.", cfg.AIProvider, err)
		completion = ai.NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
	} else {
		log.Printf("AI service initialized with provider: %s", cfg.AIProvider)
	}
	assistant := ai.NewEmailAssistant(completion)

	policy := retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}

	pipeline := emailUsecasePkg.NewSummaryPipeline(mailProvider, assistant, summaryRepo, emailUsecasePkg.PipelineConfig{
		Workers:      cfg.PipelineWorkers,
		MaxBodyChars: cfg.SummaryMaxChars,
		Retry:        policy,
	})
	emailUc := emailUsecasePkg.NewEmailUsecase(authUc, mailProvider, pipeline, assistant, summaryRepo, conversations, policy)

	chatUc := chatUsecasePkg.NewChatUsecase(
		conversations,
		chatUsecasePkg.NewClassifier(completion),
		chatUsecasePkg.NewDispatcher(completion),
	)
	authUc.SetLogoutCallback(chatUc.DropConversation)

	return &Handler{
		authUsecase:  authUc,
		config:       cfg,
		authHandler:  authDelivery.NewAuthHandler(authUc, cfg.FrontendURL),
		emailHandler: emailDelivery.NewEmailHandler(emailUc),
		chatHandler:  chatDelivery.NewChatHandler(chatUc),
	}
}

// Router returns the configured gin engine.
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware(h.config.FrontendURL))

	SetupRoutes(r, h.authUsecase, h.authHandler, h.emailHandler, h.chatHandler)
	return r
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	return h.Router().Run(addr)
}

// corsMiddleware allows credentialed requests from the frontend origin only.
func corsMiddleware(frontendURL string) gin.HandlerFunc {
	allowed := strings.TrimSuffix(frontendURL, "/")
	return func(c *gin.Context) {
		if origin := c.Request.Header.Get("Origin"); origin != "" && origin == allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
