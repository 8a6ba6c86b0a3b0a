package repository

import (
	"sync"

	chatdomain "mailassist-backend/internal/chat/domain"
	emaildomain "mailassist-backend/internal/email/domain"
)

// ConversationRepository keeps conversations in memory for the process
// lifetime. Mutations for one user are serialized by that user's lock.
type ConversationRepository interface {
	// WithConversation runs fn with exclusive access to the user's
	// conversation, creating it empty on first touch.
	WithConversation(userKey string, fn func(conv *chatdomain.Conversation))
	Snapshot(userKey string) *chatdomain.Conversation
	Reset(userKey string)
	Delete(userKey string)

	SetRecentEmails(userKey string, emails []*emaildomain.MailSummary)
	AddGeneratedReply(userKey string, reply *emaildomain.GeneratedReply)
	RemoveRecentEmail(userKey, emailID string)
}

type conversationEntry struct {
	mu   sync.Mutex
	conv *chatdomain.Conversation
}

type conversationRepository struct {
	mu      sync.Mutex
	entries map[string]*conversationEntry
}

func NewConversationRepository() ConversationRepository {
	return &conversationRepository{
		entries: make(map[string]*conversationEntry),
	}
}

func (r *conversationRepository) entry(userKey string) *conversationEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userKey]
	if !ok {
		e = &conversationEntry{conv: &chatdomain.Conversation{UserKey: userKey}}
		r.entries[userKey] = e
	}
	return e
}

func (r *conversationRepository) WithConversation(userKey string, fn func(conv *chatdomain.Conversation)) {
	e := r.entry(userKey)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.conv)
}

func (r *conversationRepository) Snapshot(userKey string) *chatdomain.Conversation {
	var out *chatdomain.Conversation
	r.WithConversation(userKey, func(conv *chatdomain.Conversation) {
		out = conv.Clone()
	})
	return out
}

func (r *conversationRepository) Reset(userKey string) {
	r.WithConversation(userKey, func(conv *chatdomain.Conversation) {
		*conv = chatdomain.Conversation{UserKey: userKey}
	})
}

func (r *conversationRepository) Delete(userKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userKey)
}

func (r *conversationRepository) SetRecentEmails(userKey string, emails []*emaildomain.MailSummary) {
	if emails == nil {
		emails = []*emaildomain.MailSummary{}
	}
	r.WithConversation(userKey, func(conv *chatdomain.Conversation) {
		conv.RecentEmails = append([]*emaildomain.MailSummary{}, emails...)
	})
}

// AddGeneratedReply caches reply, replacing an older one for the same email.
func (r *conversationRepository) AddGeneratedReply(userKey string, reply *emaildomain.GeneratedReply) {
	r.WithConversation(userKey, func(conv *chatdomain.Conversation) {
		for i, existing := range conv.GeneratedReplies {
			if existing.EmailID == reply.EmailID {
				conv.GeneratedReplies[i] = reply
				return
			}
		}
		conv.GeneratedReplies = append(conv.GeneratedReplies, reply)
	})
}

func (r *conversationRepository) RemoveRecentEmail(userKey, emailID string) {
	r.WithConversation(userKey, func(conv *chatdomain.Conversation) {
		if conv.RecentEmails == nil {
			return
		}
		kept := make([]*emaildomain.MailSummary, 0, len(conv.RecentEmails))
		for _, e := range conv.RecentEmails {
			if e.ID != emailID {
				kept = append(kept, e)
			}
		}
		conv.RecentEmails = kept
	})
}
