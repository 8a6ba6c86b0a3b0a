package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	summarySystemPrompt = "You are a helpful email summarizer. Be concise and clear."
	replySystemPrompt   = "You are a professional email assistant. Write clear, polite, and helpful email replies."
)

// EmailAssistant wraps a CompletionService with the email prompts.
// Each method makes exactly one completion call.
type EmailAssistant struct {
	completion CompletionService
}

func NewEmailAssistant(completion CompletionService) *EmailAssistant {
	return &EmailAssistant{completion: completion}
}

// SummarizeEmail asks for a 2-3 sentence summary of body.
func (a *EmailAssistant) SummarizeEmail(ctx context.Context, subject, body string) (string, error) {
	prompt := fmt.Sprintf(`Summarize this email in 2-3 concise sentences. Focus on the main point and any action items.

Subject: %s

Email:
%s

Summary:`, subject, body)

	summary, err := a.completion.Complete(ctx, CompletionRequest{
		SystemPrompt: summarySystemPrompt,
		Messages:     []Message{{Role: RoleUser, Content: prompt}},
		Temperature:  0.3,
		MaxTokens:    120,
	})
	if err != nil {
		return "", err
	}
	if summary == "" {
		return "", errors.New("model returned an empty summary")
	}
	return summary, nil
}

// GenerateReply drafts a reply body for the given message. No subject line.
func (a *EmailAssistant) GenerateReply(ctx context.Context, subject, sender, body string) (string, error) {
	prompt := fmt.Sprintf(`Generate a professional and context-aware reply to this email.
The reply should be polite, clear, and address the main points.

IMPORTANT: Do NOT include a subject line in your response. Only provide the email body text.

From: %s
Subject: %s

Original Email:
%s

Generate a professional reply (body text only, no subject line):`, sender, subject, body)

	reply, err := a.completion.Complete(ctx, CompletionRequest{
		SystemPrompt: replySystemPrompt,
		Messages:     []Message{{Role: RoleUser, Content: prompt}},
		Temperature:  0.5,
		MaxTokens:    250,
	})
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", errors.New("model returned an empty reply")
	}
	return reply, nil
}

// ExtractJSONObject trims markdown fences and surrounding prose from a model
// response and returns the outermost {...} span.
func ExtractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		return s[start : end+1]
	}
	return s
}
