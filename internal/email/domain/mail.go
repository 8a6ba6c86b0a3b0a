package domain

import (
	"context"
	"errors"
	"time"

	"github.com/emersion/go-message/mail"
	"golang.org/x/oauth2"
)

// ErrProviderUnavailable is returned while the provider circuit is open.
var ErrProviderUnavailable = errors.New("mail provider temporarily unavailable")

// MailSummary is one summarized inbox message.
type MailSummary struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"thread_id"`
	Sender      string    `json:"sender"`
	SenderEmail string    `json:"sender_email"`
	Subject     string    `json:"subject"`
	Summary     string    `json:"summary"`
	Date        time.Time `json:"date"`
}

// GeneratedReply is a drafted reply waiting for the user to send it.
type GeneratedReply struct {
	EmailID         string    `json:"email_id"`
	ThreadID        string    `json:"thread_id"`
	OriginalSubject string    `json:"original_subject"`
	OriginalSender  string    `json:"original_sender"`
	ReplyContent    string    `json:"reply_content"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// BodyPart is a decoded leaf MIME part.
type BodyPart struct {
	MimeType string
	Data     []byte
}

// Message is a fetched provider message: headers plus leaf body parts in
// document order.
type Message struct {
	ID       string
	ThreadID string
	Header   mail.Header
	Parts    []BodyPart
}

// Stage names where a pipeline item failed.
const (
	StageFetch     = "fetch"
	StageExtract   = "extract"
	StageSummarize = "summarize"
)

// ItemFailure records a pipeline item that was dropped.
type ItemFailure struct {
	EmailID string
	Stage   string
	Err     error
}

// SummaryBatch is the pipeline output: survivors in listing order plus the
// items that were dropped.
type SummaryBatch struct {
	Summaries []*MailSummary
	Failures  []ItemFailure
}

// TokenUpdateFunc is called when a client refreshes its access token.
type TokenUpdateFunc func(token *oauth2.Token) error

// MailProvider creates provider clients. Each client is owned by a single
// goroutine.
type MailProvider interface {
	NewClient(ctx context.Context, accessToken, refreshToken string, expiry time.Time, onTokenRefresh TokenUpdateFunc) (MailClient, error)
}

// MailClient is the subset of the mail API the assistant needs.
type MailClient interface {
	ListMessageIDs(ctx context.Context, maxResults int) ([]string, error)
	GetMessage(ctx context.Context, id string) (*Message, error)
	SendMessage(ctx context.Context, raw []byte, threadID string) error
	TrashMessage(ctx context.Context, id string) error
}
