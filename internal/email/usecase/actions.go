package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	emaildomain "mailassist-backend/internal/email/domain"

	"github.com/emersion/go-message/mail"
)

// MailActions performs single send and trash calls. Failures are logged and
// reported as false; they are never retried.
type MailActions struct {
	provider emaildomain.MailProvider
	now      func() time.Time
}

func NewMailActions(provider emaildomain.MailProvider) *MailActions {
	return &MailActions{provider: provider, now: time.Now}
}

// SendReply replies to emailID with text inside the original thread.
func (a *MailActions) SendReply(ctx context.Context, access MailAccess, emailID, text string) bool {
	client, err := access.newClient(ctx, a.provider)
	if err != nil {
		log.Printf("[Actions] Send reply to %s: %v", emailID, err)
		return false
	}

	original, err := client.GetMessage(ctx, emailID)
	if err != nil {
		log.Printf("[Actions] Send reply: fetch original %s: %v", emailID, err)
		return false
	}

	raw, err := buildReply(original, text, a.now())
	if err != nil {
		log.Printf("[Actions] Send reply: build %s: %v", emailID, err)
		return false
	}

	threadID := original.ThreadID
	if threadID == "" {
		threadID = emailID
	}
	if err := client.SendMessage(ctx, raw, threadID); err != nil {
		log.Printf("[Actions] Send reply to %s failed: %v", emailID, err)
		return false
	}

	log.Printf("[Actions] Reply sent for %s", emailID)
	return true
}

// DeleteEmail moves emailID to trash.
func (a *MailActions) DeleteEmail(ctx context.Context, access MailAccess, emailID string) bool {
	client, err := access.newClient(ctx, a.provider)
	if err != nil {
		log.Printf("[Actions] Delete %s: %v", emailID, err)
		return false
	}
	if err := client.TrashMessage(ctx, emailID); err != nil {
		log.Printf("[Actions] Delete %s failed: %v", emailID, err)
		return false
	}

	log.Printf("[Actions] Trashed %s", emailID)
	return true
}

// buildReply renders a plain-text RFC 5322 reply to original.
func buildReply(original *emaildomain.Message, text string, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetSubject(replySubject(rawSubject(&original.Header)))
	h.Set("Content-Type", "text/plain; charset=utf-8")

	addrs, raw := replyRecipients(&original.Header)
	switch {
	case len(addrs) > 0:
		h.SetAddressList("To", addrs)
	case raw != "":
		h.Set("To", raw)
	default:
		return nil, errors.New("original message has no sender to reply to")
	}

	if msgID := strings.TrimSpace(original.Header.Get("Message-Id")); msgID != "" {
		h.Set("In-Reply-To", msgID)
		refs := strings.TrimSpace(original.Header.Get("References"))
		if refs != "" {
			refs += " "
		}
		h.Set("References", refs+msgID)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create reply writer: %w", err)
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
