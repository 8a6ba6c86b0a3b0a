package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	emaildomain "mailassist-backend/internal/email/domain"

	"github.com/emersion/go-message/mail"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const user = "me"

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = emaildomain.TokenUpdateFunc

// Service builds Gmail clients. All clients share one circuit breaker so a
// provider outage fails fast for every user.
type Service struct {
	oauthConfig *oauth2.Config
	breaker     *gobreaker.CircuitBreaker
	clientOpts  []option.ClientOption
}

type notifyTokenSource struct {
	mu       sync.Mutex
	src      oauth2.TokenSource
	current  string
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callback != nil && s.current != t.AccessToken {
		s.current = t.AccessToken
		if err := s.callback(t); err != nil {
			log.Printf("[Gmail] Failed to store refreshed token: %v", err)
		}
	}
	return t, nil
}

// NewService creates a Gmail service using oauthConfig for token refresh.
// Extra client options are applied to every client (tests use them to point
// at a fake endpoint).
func NewService(oauthConfig *oauth2.Config, breakerTimeout time.Duration, opts ...option.ClientOption) *Service {
	if breakerTimeout <= 0 {
		breakerTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gmail",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// client errors say nothing about provider health
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[Gmail] Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Service{
		oauthConfig: oauthConfig,
		breaker:     breaker,
		clientOpts:  opts,
	}
}

// NewClient creates a Gmail client for one user's tokens.
func (s *Service) NewClient(ctx context.Context, accessToken, refreshToken string, expiry time.Time, onTokenRefresh TokenUpdateFunc) (emaildomain.MailClient, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		Expiry:       expiry,
	}

	wrapped := &notifyTokenSource{
		src:      s.oauthConfig.TokenSource(ctx, token),
		current:  accessToken,
		callback: onTokenRefresh,
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, wrapped))}, s.clientOpts...)
	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}

	return &Client{srv: srv, breaker: s.breaker}, nil
}

// Client is a single-user Gmail client
type Client struct {
	srv     *gmail.Service
	breaker *gobreaker.CircuitBreaker
}

func (c *Client) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := c.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", emaildomain.ErrProviderUnavailable, err)
	}
	return res, err
}

// ListMessageIDs lists INBOX message ids, most recent first.
func (c *Client) ListMessageIDs(ctx context.Context, maxResults int) ([]string, error) {
	res, err := c.execute(func() (interface{}, error) {
		return c.srv.Users.Messages.List(user).LabelIds("INBOX").MaxResults(int64(maxResults)).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	resp := res.(*gmail.ListMessagesResponse)
	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

func (c *Client) GetMessage(ctx context.Context, id string) (*emaildomain.Message, error) {
	res, err := c.execute(func() (interface{}, error) {
		return c.srv.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message %s: %w", id, err)
	}

	return convertGmailMessage(res.(*gmail.Message))
}

// SendMessage sends a raw RFC 5322 message within threadID.
func (c *Client) SendMessage(ctx context.Context, raw []byte, threadID string) error {
	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString(raw),
		ThreadId: threadID,
	}
	_, err := c.execute(func() (interface{}, error) {
		return c.srv.Users.Messages.Send(user, msg).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("unable to send message: %w", err)
	}
	return nil
}

// TrashMessage moves a message to trash.
func (c *Client) TrashMessage(ctx context.Context, id string) error {
	_, err := c.execute(func() (interface{}, error) {
		return c.srv.Users.Messages.Trash(user, id).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("unable to trash message %s: %w", id, err)
	}
	return nil
}

func convertGmailMessage(msg *gmail.Message) (*emaildomain.Message, error) {
	if msg.Payload == nil {
		return nil, fmt.Errorf("message %s has no payload", msg.Id)
	}

	var header mail.Header
	for _, h := range msg.Payload.Headers {
		header.Add(h.Name, h.Value)
	}

	out := &emaildomain.Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Header:   header,
	}
	collectParts(msg.Payload, &out.Parts)
	return out, nil
}

// collectParts appends decoded leaf parts in document order, skipping attachments.
func collectParts(part *gmail.MessagePart, out *[]emaildomain.BodyPart) {
	if part == nil {
		return
	}
	if len(part.Parts) > 0 {
		for _, p := range part.Parts {
			collectParts(p, out)
		}
		return
	}
	if part.Filename != "" || part.Body == nil || part.Body.Data == "" {
		return
	}

	data, err := decodeBase64URL(part.Body.Data)
	if err != nil {
		log.Printf("[Gmail] Skipping undecodable %s part: %v", part.MimeType, err)
		return
	}
	*out = append(*out, emaildomain.BodyPart{MimeType: strings.ToLower(part.MimeType), Data: data})
}

// decodeBase64URL accepts padded and unpadded URL-safe base64.
func decodeBase64URL(s string) ([]byte, error) {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

func isClientError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusBadRequest && apiErr.Code < http.StatusInternalServerError &&
			apiErr.Code != http.StatusTooManyRequests
	}
	return false
}
