package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	chatdomain "mailassist-backend/internal/chat/domain"
	emaildomain "mailassist-backend/internal/email/domain"
	"mailassist-backend/pkg/ai"
	"mailassist-backend/pkg/fuzzy"
)

const chatHistory = 10

const (
	greetingText = "Hello %s! 👋 I'm your AI email assistant. I can help you:\n\n" +
		"• Read and summarize your recent emails\n" +
		"• Generate professional replies\n" +
		"• Delete specific emails\n" +
		"• Send replies on your behalf\n\n" +
		"Just tell me what you'd like to do!"
	readEmailsText      = "I'll fetch your recent emails now. Please wait a moment..."
	generateRepliesText = "I'll generate professional replies for your recent emails. This may take a moment..."
	fetchFirstText      = "I don't see any emails to generate replies for. Would you like me to fetch your recent emails first?"
	deleteEmailText     = "I'll help you delete that email. Let me confirm the details first..."
	sendReplyText       = "I'll send that reply for you. Please confirm you want to proceed."
	chatFailureApology  = "I apologize, but I'm having trouble processing your request right now. Please try again."
)

const chatAssistantPrompt = `You are a helpful AI email assistant. You help users manage their Gmail inbox.

Your capabilities:
- Read and summarize recent emails
- Generate professional email replies
- Delete specific emails
- Send replies on behalf of the user

Be friendly, concise, and helpful. When users ask about your capabilities, explain what you can do.`

// Actions the client is expected to perform after a turn.
const (
	ActionFetchEmails     = "fetch_emails"
	ActionGenerateReplies = "generate_replies"
	ActionConfirmDelete   = "confirm_delete"
	ActionConfirmSend     = "confirm_send"
)

// DispatchInput is one classified turn plus a snapshot of the conversation
// taken before the user message was appended.
type DispatchInput struct {
	UserName       string
	Message        string
	Classification chatdomain.IntentClassification
	Conversation   *chatdomain.Conversation
}

type DispatchResult struct {
	Text   string
	Action string
	Target string
}

// Dispatcher picks the response for a classified turn. It only reads the
// conversation snapshot; fetching, sending and deleting are left to the
// caller. GENERAL_QUERY is the one branch that calls the model.
type Dispatcher struct {
	completion ai.CompletionService
}

func NewDispatcher(completion ai.CompletionService) *Dispatcher {
	return &Dispatcher{completion: completion}
}

func (d *Dispatcher) Dispatch(ctx context.Context, in DispatchInput) DispatchResult {
	conv := in.Conversation

	switch in.Classification.Intent {
	case chatdomain.IntentGreeting:
		return DispatchResult{Text: fmt.Sprintf(greetingText, in.UserName)}

	case chatdomain.IntentReadEmails:
		return DispatchResult{Text: readEmailsText, Action: ActionFetchEmails}

	case chatdomain.IntentGenerateReplies:
		if len(conv.RecentEmails) > 0 {
			return DispatchResult{Text: generateRepliesText, Action: ActionGenerateReplies}
		}
		return DispatchResult{Text: fetchFirstText}

	case chatdomain.IntentDeleteEmail:
		res := DispatchResult{Text: deleteEmailText, Action: ActionConfirmDelete}
		if idx := resolveEmail(in.Classification, conv.RecentEmails); idx >= 0 {
			email := conv.RecentEmails[idx]
			res.Target = email.ID
			res.Text += fmt.Sprintf("\n\nEmail %d: %q from %s", idx+1, email.Subject, email.Sender)
		}
		return res

	case chatdomain.IntentSendReply:
		res := DispatchResult{Text: sendReplyText, Action: ActionConfirmSend}
		if reply := resolveReply(in.Classification, conv.GeneratedReplies); reply != nil {
			res.Target = reply.EmailID
			res.Text += fmt.Sprintf("\n\nReply to %q from %s", reply.OriginalSubject, reply.OriginalSender)
		}
		return res
	}

	return DispatchResult{Text: d.chat(ctx, in.Message, conv)}
}

func (d *Dispatcher) chat(ctx context.Context, message string, conv *chatdomain.Conversation) string {
	flags, _ := json.Marshal(map[string]bool{
		"has_recent_emails":     conv.HasRecentEmails(),
		"has_generated_replies": conv.HasGeneratedReplies(),
	})

	msgs := toAIMessages(chatdomain.LastMessages(conv.Messages, chatHistory))
	msgs = append(msgs,
		ai.Message{Role: ai.RoleSystem, Content: "Context: " + string(flags)},
		ai.Message{Role: ai.RoleUser, Content: message},
	)

	reply, err := d.completion.Complete(ctx, ai.CompletionRequest{
		SystemPrompt: chatAssistantPrompt,
		Messages:     msgs,
		Temperature:  0.7,
		MaxTokens:    500,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		log.Printf("[Chat] Chat completion failed: %v", err)
		return chatFailureApology
	}
	return strings.TrimSpace(reply)
}

// resolveEmail finds the cached email a DELETE_EMAIL turn refers to, by
// 1-based position first, then by fuzzy sender or subject match.
func resolveEmail(cls chatdomain.IntentClassification, emails []*emaildomain.MailSummary) int {
	if n := cls.ReferenceNumber(); n >= 1 && n <= len(emails) {
		return n - 1
	}

	if sender := cls.Sender(); sender != "" {
		candidates := make([][]string, len(emails))
		for i, e := range emails {
			candidates[i] = []string{e.Sender, e.SenderEmail}
		}
		if idx := fuzzy.BestMatch(sender, candidates); idx >= 0 {
			return idx
		}
	}

	if keyword := cls.SubjectKeyword(); keyword != "" {
		candidates := make([][]string, len(emails))
		for i, e := range emails {
			candidates[i] = []string{e.Subject}
		}
		return fuzzy.BestMatch(keyword, candidates)
	}
	return -1
}

// resolveReply picks the generated reply by 1-based number, or the only one.
func resolveReply(cls chatdomain.IntentClassification, replies []*emaildomain.GeneratedReply) *emaildomain.GeneratedReply {
	if n := cls.ReplyNumber(); n >= 1 && n <= len(replies) {
		return replies[n-1]
	}
	if len(replies) == 1 {
		return replies[0]
	}
	return nil
}
