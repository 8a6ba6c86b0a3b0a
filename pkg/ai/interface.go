package ai

import "context"

// Role of a chat message sent to the model.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the conversation passed to the model.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest carries everything a single completion call needs.
type CompletionRequest struct {
	SystemPrompt string
	Messages     []Message
	Temperature  float64
	MaxTokens    int  // zero leaves the provider default
	JSON         bool // ask the provider for a JSON object
}

// CompletionService is the interface for language-model providers.
// Implement this interface to add new providers.
type CompletionService interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai" // any OpenAI-compatible endpoint, Groq by default
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)

// allMessages flattens the system prompt and history into one list.
func (r CompletionRequest) allMessages() []Message {
	msgs := make([]Message, 0, len(r.Messages)+1)
	if r.SystemPrompt != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: r.SystemPrompt})
	}
	return append(msgs, r.Messages...)
}
