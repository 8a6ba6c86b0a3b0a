package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	emaildomain "mailassist-backend/internal/email/domain"
	"mailassist-backend/internal/email/repository"
	"mailassist-backend/pkg/htmltext"
	"mailassist-backend/pkg/retry"

	"golang.org/x/oauth2"
)

const replyBodyChars = 1500

// emailUsecase implements EmailUsecase interface
type emailUsecase struct {
	credentials  CredentialSource
	provider     emaildomain.MailProvider
	pipeline     *SummaryPipeline
	actions      *MailActions
	replies      ReplyGenerator
	summaryRepo  repository.EmailSummaryRepository
	conversation ConversationCache
	policy       retry.Policy
	now          func() time.Time
}

// NewEmailUsecase creates a new instance of emailUsecase. summaryRepo and
// conversation may be nil.
func NewEmailUsecase(
	credentials CredentialSource,
	provider emaildomain.MailProvider,
	pipeline *SummaryPipeline,
	replies ReplyGenerator,
	summaryRepo repository.EmailSummaryRepository,
	conversation ConversationCache,
	policy retry.Policy,
) EmailUsecase {
	if policy.MaxAttempts <= 0 {
		policy = retry.DefaultPolicy()
	}
	return &emailUsecase{
		credentials:  credentials,
		provider:     provider,
		pipeline:     pipeline,
		actions:      NewMailActions(provider),
		replies:      replies,
		summaryRepo:  summaryRepo,
		conversation: conversation,
		policy:       policy,
		now:          time.Now,
	}
}

func (u *emailUsecase) access(ctx context.Context, userKey string) (MailAccess, error) {
	cred, err := u.credentials.Credential(ctx, userKey)
	if err != nil {
		return MailAccess{}, err
	}
	return MailAccess{
		UserKey:        userKey,
		Credential:     cred,
		OnTokenRefresh: u.makeTokenUpdateCallback(userKey),
	}, nil
}

// makeTokenUpdateCallback writes tokens refreshed by a provider client back
// into the session.
func (u *emailUsecase) makeTokenUpdateCallback(userKey string) emaildomain.TokenUpdateFunc {
	return func(token *oauth2.Token) error {
		return u.credentials.StoreRefreshedToken(userKey, token.AccessToken, token.Expiry)
	}
}

func (u *emailUsecase) FetchRecentEmails(ctx context.Context, userKey string, limit int) ([]*emaildomain.MailSummary, error) {
	access, err := u.access(ctx, userKey)
	if err != nil {
		return nil, err
	}

	batch, err := u.pipeline.FetchAndSummarize(ctx, access, limit)
	if err != nil {
		return nil, err
	}
	if u.conversation != nil {
		u.conversation.SetRecentEmails(userKey, batch.Summaries)
	}
	return batch.Summaries, nil
}

func (u *emailUsecase) GenerateReply(ctx context.Context, userKey, emailID string) (*emaildomain.GeneratedReply, error) {
	if u.replies == nil {
		return nil, errors.New("AI service not configured")
	}
	access, err := u.access(ctx, userKey)
	if err != nil {
		return nil, err
	}
	client, err := access.newClient(ctx, u.provider)
	if err != nil {
		return nil, err
	}
	msg, err := client.GetMessage(ctx, emailID)
	if err != nil {
		return nil, err
	}

	subject := subjectOf(&msg.Header)
	sender, _ := senderOf(&msg.Header)
	body := htmltext.Truncate(extractBody(msg), replyBodyChars)

	policy := u.policy
	policy.OnRetry = func(attempt int, err error) {
		log.Printf("[Email] Reply attempt %d for %s failed: %v, retrying", attempt, emailID, err)
	}
	content, err := retry.DoValue(ctx, policy, func(ctx context.Context) (string, error) {
		return u.replies.GenerateReply(ctx, subject, sender, body)
	})
	if err != nil {
		return nil, fmt.Errorf("generate reply for %s: %w", emailID, err)
	}

	threadID := msg.ThreadID
	if threadID == "" {
		threadID = emailID
	}
	reply := &emaildomain.GeneratedReply{
		EmailID:         emailID,
		ThreadID:        threadID,
		OriginalSubject: subject,
		OriginalSender:  sender,
		ReplyContent:    content,
		GeneratedAt:     u.now(),
	}
	if u.conversation != nil {
		u.conversation.AddGeneratedReply(userKey, reply)
	}
	return reply, nil
}

func (u *emailUsecase) SendReply(ctx context.Context, userKey, emailID, text string) (bool, error) {
	access, err := u.access(ctx, userKey)
	if err != nil {
		return false, err
	}
	return u.actions.SendReply(ctx, access, emailID, text), nil
}

func (u *emailUsecase) DeleteEmail(ctx context.Context, userKey, emailID string) (bool, error) {
	access, err := u.access(ctx, userKey)
	if err != nil {
		return false, err
	}
	if !u.actions.DeleteEmail(ctx, access, emailID) {
		return false, nil
	}

	if u.summaryRepo != nil {
		if err := u.summaryRepo.DeleteSummary(userKey, emailID); err != nil {
			log.Printf("[Email] Failed to delete cached summary for %s: %v", emailID, err)
		}
	}
	if u.conversation != nil {
		u.conversation.RemoveRecentEmail(userKey, emailID)
	}
	return true, nil
}
