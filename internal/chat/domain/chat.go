package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	emaildomain "mailassist-backend/internal/email/domain"
)

// Role of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Intent is the classified goal of a chat message.
type Intent string

const (
	IntentReadEmails      Intent = "READ_EMAILS"
	IntentGenerateReplies Intent = "GENERATE_REPLIES"
	IntentDeleteEmail     Intent = "DELETE_EMAIL"
	IntentSendReply       Intent = "SEND_REPLY"
	IntentGeneralQuery    Intent = "GENERAL_QUERY"
	IntentGreeting        Intent = "GREETING"
)

// ParseIntent maps a model-produced tag onto a known intent.
func ParseIntent(tag string) (Intent, bool) {
	switch i := Intent(strings.ToUpper(strings.TrimSpace(tag))); i {
	case IntentReadEmails, IntentGenerateReplies, IntentDeleteEmail, IntentSendReply, IntentGeneralQuery, IntentGreeting:
		return i, true
	}
	return IntentGeneralQuery, false
}

type IntentClassification struct {
	Intent     Intent         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Parameters map[string]interface{} `json:"parameters"`
}

// FallbackClassification is used whenever the classifier cannot produce a result.
func FallbackClassification() IntentClassification {
	return IntentClassification{Intent: IntentGeneralQuery, Confidence: 0, Parameters: map[string]interface{}{}}
}

func (c IntentClassification) Sender() string         { return c.stringParam("sender") }
func (c IntentClassification) SubjectKeyword() string { return c.stringParam("subject_keyword") }
func (c IntentClassification) ReferenceNumber() int   { return c.intParam("reference_number") }
func (c IntentClassification) ReplyNumber() int       { return c.intParam("reply_number") }

func (c IntentClassification) stringParam(name string) string {
	s, _ := c.Parameters[name].(string)
	return strings.TrimSpace(s)
}

// intParam accepts JSON numbers and numeric strings; anything else is 0.
func (c IntentClassification) intParam(name string) int {
	switch v := c.Parameters[name].(type) {
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

// ClassificationResult is either a classification or the reason there is none.
type ClassificationResult struct {
	Classification *IntentClassification
	Err            error
}

// Or returns the classification, or fallback when classification failed.
func (r ClassificationResult) Or(fallback IntentClassification) IntentClassification {
	if r.Err != nil || r.Classification == nil {
		return fallback
	}
	return *r.Classification
}

// Conversation is the per-user chat state. A nil RecentEmails or
// GeneratedReplies means nothing has been cached yet; an empty one means a
// fetch ran and returned nothing.
type Conversation struct {
	UserKey          string
	Messages         []ChatMessage
	RecentEmails     []*emaildomain.MailSummary
	GeneratedReplies []*emaildomain.GeneratedReply
}

func (c *Conversation) HasRecentEmails() bool     { return c.RecentEmails != nil }
func (c *Conversation) HasGeneratedReplies() bool { return c.GeneratedReplies != nil }

// Append adds a message stamped with at.
func (c *Conversation) Append(role Role, content string, at time.Time) {
	c.Messages = append(c.Messages, ChatMessage{Role: role, Content: content, Timestamp: at})
}

// Clone copies the conversation so callers can read it without holding the
// per-user lock. Cached items are shared; they are never mutated in place.
func (c *Conversation) Clone() *Conversation {
	out := &Conversation{
		UserKey:  c.UserKey,
		Messages: append([]ChatMessage(nil), c.Messages...),
	}
	if c.RecentEmails != nil {
		out.RecentEmails = append([]*emaildomain.MailSummary{}, c.RecentEmails...)
	}
	if c.GeneratedReplies != nil {
		out.GeneratedReplies = append([]*emaildomain.GeneratedReply{}, c.GeneratedReplies...)
	}
	return out
}

// LastMessages returns up to n trailing messages.
func LastMessages(msgs []ChatMessage, n int) []ChatMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// TurnResult is what one chat turn produces.
type TurnResult struct {
	Message   string
	Intent    IntentClassification
	Action    string
	Target    string
	Timestamp time.Time
}
