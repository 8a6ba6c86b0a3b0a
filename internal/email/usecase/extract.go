package usecase

import (
	"bytes"
	"strings"
	"time"

	emaildomain "mailassist-backend/internal/email/domain"
	"mailassist-backend/pkg/htmltext"

	"github.com/emersion/go-message/mail"
)

// extractBody prefers the first non-empty text/plain part and falls back to
// converting the first text/html part.
func extractBody(msg *emaildomain.Message) string {
	for _, p := range msg.Parts {
		if p.MimeType == "text/plain" && len(bytes.TrimSpace(p.Data)) > 0 {
			return strings.TrimSpace(string(p.Data))
		}
	}
	for _, p := range msg.Parts {
		if p.MimeType == "text/html" && len(p.Data) > 0 {
			return htmltext.ToText(string(p.Data))
		}
	}
	return ""
}

// subjectOf is the display subject, with a placeholder for blank headers.
func subjectOf(h *mail.Header) string {
	if subject := rawSubject(h); subject != "" {
		return subject
	}
	return "(No Subject)"
}

func rawSubject(h *mail.Header) string {
	subject, err := h.Subject()
	if err != nil {
		subject = h.Get("Subject")
	}
	return strings.TrimSpace(subject)
}

// senderOf returns a display name and the bare address of the From header.
func senderOf(h *mail.Header) (string, string) {
	if addrs, err := h.AddressList("From"); err == nil && len(addrs) > 0 {
		name := addrs[0].Name
		if name == "" {
			name = addrs[0].Address
		}
		return name, addrs[0].Address
	}
	if raw := strings.TrimSpace(h.Get("From")); raw != "" {
		return raw, raw
	}
	return "(Unknown)", ""
}

// dateOf parses the Date header, substituting now when it is missing or bad.
func dateOf(h *mail.Header, now func() time.Time) time.Time {
	d, err := h.Date()
	if err != nil || d.IsZero() {
		return now()
	}
	return d
}

// replyRecipients resolves Reply-To, then From.
func replyRecipients(h *mail.Header) ([]*mail.Address, string) {
	for _, key := range []string{"Reply-To", "From"} {
		if addrs, err := h.AddressList(key); err == nil && len(addrs) > 0 {
			return addrs, ""
		}
		if raw := strings.TrimSpace(h.Get(key)); raw != "" {
			return nil, raw
		}
	}
	return nil, ""
}

func replySubject(subject string) string {
	if subject == "" {
		return "Re:"
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:") {
		return subject
	}
	return "Re: " + subject
}
