package ai

import "fmt"

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType

	// OpenAI-compatible endpoint (Groq by default)
	APIKey  string
	BaseURL string
	Model   string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3"
}

// NewCompletionService creates a CompletionService based on the config.
// Switch providers by changing cfg.Provider.
func NewCompletionService(cfg Config) (CompletionService, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for the %s provider", cfg.Provider)
		}
		return NewOpenAIService(cfg.APIKey, cfg.BaseURL, cfg.Model), nil

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	case ProviderAuto, "":
		ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
		if cfg.APIKey == "" {
			return ollama, nil
		}
		return NewFallbackService(NewOpenAIService(cfg.APIKey, cfg.BaseURL, cfg.Model), ollama), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
