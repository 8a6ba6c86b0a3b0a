package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	chatdomain "mailassist-backend/internal/chat/domain"
	"mailassist-backend/internal/chat/repository"
	emaildomain "mailassist-backend/internal/email/domain"
)

// ErrEmptyMessage is returned for blank chat input.
var ErrEmptyMessage = errors.New("message must not be empty")

// IntentClassifier is satisfied by *Classifier.
type IntentClassifier interface {
	Classify(ctx context.Context, message string, history []chatdomain.ChatMessage) chatdomain.ClassificationResult
}

type chatUsecase struct {
	conversations repository.ConversationRepository
	classifier    IntentClassifier
	dispatcher    *Dispatcher
	now           func() time.Time
}

func NewChatUsecase(conversations repository.ConversationRepository, classifier IntentClassifier, dispatcher *Dispatcher) ChatUsecase {
	return &chatUsecase{
		conversations: conversations,
		classifier:    classifier,
		dispatcher:    dispatcher,
		now:           time.Now,
	}
}

// SendMessage holds the user's conversation lock for the whole turn, so two
// turns from the same user never interleave their history entries.
func (u *chatUsecase) SendMessage(ctx context.Context, userKey, userName, message string) (*chatdomain.TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	var result *chatdomain.TurnResult
	u.conversations.WithConversation(userKey, func(conv *chatdomain.Conversation) {
		snapshot := conv.Clone()
		receivedAt := u.now()

		classified := u.classifier.Classify(ctx, message, snapshot.Messages)
		if classified.Err != nil {
			log.Printf("[Chat] Classification failed for %s, using fallback: %v", userKey, classified.Err)
		}
		cls := classified.Or(chatdomain.FallbackClassification())

		resp := u.dispatcher.Dispatch(ctx, DispatchInput{
			UserName:       userName,
			Message:        message,
			Classification: cls,
			Conversation:   snapshot,
		})

		respondedAt := u.now()
		conv.Append(chatdomain.RoleUser, message, receivedAt)
		conv.Append(chatdomain.RoleAssistant, resp.Text, respondedAt)

		result = &chatdomain.TurnResult{
			Message:   resp.Text,
			Intent:    cls,
			Action:    resp.Action,
			Target:    resp.Target,
			Timestamp: respondedAt,
		}
	})

	log.Printf("[Chat] %s: intent=%s action=%s", userKey, result.Intent.Intent, result.Action)
	return result, nil
}

func (u *chatUsecase) GetHistory(userKey string) []chatdomain.ChatMessage {
	return u.conversations.Snapshot(userKey).Messages
}

func (u *chatUsecase) ClearHistory(userKey string) {
	u.conversations.Reset(userKey)
}

func (u *chatUsecase) SetRecentEmails(userKey string, emails []*emaildomain.MailSummary) int {
	u.conversations.SetRecentEmails(userKey, emails)
	return len(emails)
}

func (u *chatUsecase) DropConversation(userKey string) {
	u.conversations.Delete(userKey)
}
