package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	FrontendURL string

	JWTSecret       string
	JWTAccessExpiry time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	CSRFStateTTL       time.Duration

	// LLM provider
	AIProvider    string // "openai", "ollama" or "auto"
	LLMAPIKey     string
	LLMBaseURL    string
	LLMModel      string
	OllamaBaseURL string
	OllamaModel   string

	// Optional summary cache, disabled when empty
	DatabaseURL string

	PipelineWorkers  int
	SummaryMaxChars  int
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	GmailBreakerTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:     getDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:   getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/auth/callback"),
		CSRFStateTTL:        getDuration("CSRF_STATE_TTL", 10*time.Minute),
		AIProvider:          getEnv("AI_PROVIDER", "openai"),
		LLMAPIKey:           getEnv("LLM_API_KEY", os.Getenv("GROQ_API_KEY")),
		LLMBaseURL:          getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:            getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:         getEnv("OLLAMA_MODEL", "llama3"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		PipelineWorkers:     getInt("PIPELINE_WORKERS", 5),
		SummaryMaxChars:     getInt("SUMMARY_MAX_CHARS", 10000),
		RetryMaxAttempts:    getInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:      getDuration("RETRY_BASE_DELAY", 2*time.Second),
		RetryMaxDelay:       getDuration("RETRY_MAX_DELAY", 10*time.Second),
		GmailBreakerTimeout: getDuration("GMAIL_BREAKER_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
