package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	chatdomain "mailassist-backend/internal/chat/domain"
	"mailassist-backend/pkg/ai"
)

const classifierHistory = 5

const classifierPrompt = `You are an intent classifier for an email assistant.
Analyze the user's message and classify it into one of these intents:

- READ_EMAILS: User wants to see/read their recent emails
- GENERATE_REPLIES: User wants to generate AI replies for emails
- DELETE_EMAIL: User wants to delete a specific email
- SEND_REPLY: User wants to send a generated reply
- GREETING: User is greeting or starting conversation
- GENERAL_QUERY: General questions or unclear intent

Return a JSON object with:
{
    "intent": "INTENT_NAME",
    "confidence": 0.0-1.0,
    "parameters": {
        // For DELETE_EMAIL: {"sender": "name", "subject_keyword": "word", "reference_number": 1}
        // For SEND_REPLY: {"reply_number": 1}
        // For others: {}
    }
}

Examples:
- "Show me my recent emails" -> READ_EMAILS
- "Generate replies for these" -> GENERATE_REPLIES
- "Delete the email from John" -> DELETE_EMAIL with {"sender": "John"}
- "Send reply number 2" -> SEND_REPLY with {"reply_number": 2}`

// Classifier maps chat text to an intent with a single completion call.
type Classifier struct {
	completion ai.CompletionService
}

func NewClassifier(completion ai.CompletionService) *Classifier {
	return &Classifier{completion: completion}
}

type classifierOutput struct {
	Intent     string         `json:"intent"`
	Confidence *float64       `json:"confidence"`
	Parameters map[string]interface{} `json:"parameters"`
}

// Classify never retries. Call and parse failures come back as a tagged
// result for the caller to replace with a fallback.
func (c *Classifier) Classify(ctx context.Context, message string, history []chatdomain.ChatMessage) chatdomain.ClassificationResult {
	msgs := toAIMessages(chatdomain.LastMessages(history, classifierHistory))
	msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: message})

	raw, err := c.completion.Complete(ctx, ai.CompletionRequest{
		SystemPrompt: classifierPrompt,
		Messages:     msgs,
		Temperature:  0.3,
		JSON:         true,
	})
	if err != nil {
		return chatdomain.ClassificationResult{Err: fmt.Errorf("classification call: %w", err)}
	}

	cls, err := parseClassification(raw)
	if err != nil {
		return chatdomain.ClassificationResult{Err: err}
	}
	return chatdomain.ClassificationResult{Classification: cls}
}

func parseClassification(raw string) (*chatdomain.IntentClassification, error) {
	var out classifierOutput
	if err := json.Unmarshal([]byte(ai.ExtractJSONObject(raw)), &out); err != nil {
		return nil, fmt.Errorf("malformed classification: %w", err)
	}
	if strings.TrimSpace(out.Intent) == "" {
		return nil, errors.New("classification has no intent")
	}

	intent, known := chatdomain.ParseIntent(out.Intent)
	if !known {
		log.Printf("[Chat] Unknown intent %q, treating as %s", out.Intent, intent)
	}

	confidence := 0.5
	if out.Confidence != nil {
		confidence = min(max(*out.Confidence, 0), 1)
	}
	params := out.Parameters
	if params == nil {
		params = map[string]interface{}{}
	}

	return &chatdomain.IntentClassification{
		Intent:     intent,
		Confidence: confidence,
		Parameters: params,
	}, nil
}

func toAIMessages(history []chatdomain.ChatMessage) []ai.Message {
	out := make([]ai.Message, 0, len(history)+1)
	for _, m := range history {
		out = append(out, ai.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
