package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	authdomain "mailassist-backend/internal/auth/domain"
	emaildomain "mailassist-backend/internal/email/domain"
	"mailassist-backend/internal/email/repository"
	"mailassist-backend/pkg/htmltext"
	"mailassist-backend/pkg/retry"
)

// Summarizer produces a short summary of one message.
type Summarizer interface {
	SummarizeEmail(ctx context.Context, subject, body string) (string, error)
}

// MailAccess is what a pipeline run or action needs to talk to the provider
// on behalf of one user.
type MailAccess struct {
	UserKey        string
	Credential     *authdomain.DelegatedCredential
	OnTokenRefresh emaildomain.TokenUpdateFunc
}

func (a MailAccess) newClient(ctx context.Context, provider emaildomain.MailProvider) (emaildomain.MailClient, error) {
	if a.Credential == nil {
		return nil, authdomain.ErrCredentialMissing
	}
	return provider.NewClient(ctx, a.Credential.AccessToken, a.Credential.RefreshToken, a.Credential.Expiry, a.OnTokenRefresh)
}

// PipelineConfig tunes the fetch/summarize pipeline.
type PipelineConfig struct {
	Workers      int
	MaxBodyChars int
	Retry        retry.Policy
}

// summaryJob is one listed message and its position in the listing
type summaryJob struct {
	index   int
	emailID string
}

// itemResult is either a summary or a tagged failure, never both
type itemResult struct {
	summary *emaildomain.MailSummary
	failure *emaildomain.ItemFailure
}

// SummaryPipeline lists inbox messages and summarizes them on a fixed pool
// of workers. Results land in a slot per listing position, so survivors keep
// the provider's order.
type SummaryPipeline struct {
	provider     emaildomain.MailProvider
	summarizer   Summarizer
	summaryRepo  repository.EmailSummaryRepository
	workerCount  int
	maxBodyChars int
	policy       retry.Policy
	now          func() time.Time
}

// NewSummaryPipeline creates a pipeline. summaryRepo may be nil to disable caching.
func NewSummaryPipeline(
	provider emaildomain.MailProvider,
	summarizer Summarizer,
	summaryRepo repository.EmailSummaryRepository,
	cfg PipelineConfig,
) *SummaryPipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if cfg.MaxBodyChars <= 0 {
		cfg.MaxBodyChars = 10000
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = retry.DefaultPolicy()
	}

	return &SummaryPipeline{
		provider:     provider,
		summarizer:   summarizer,
		summaryRepo:  summaryRepo,
		workerCount:  cfg.Workers,
		maxBodyChars: cfg.MaxBodyChars,
		policy:       cfg.Retry,
		now:          time.Now,
	}
}

// FetchAndSummarize lists up to limit inbox messages and summarizes them.
// Only a listing failure is returned as an error; failed items are dropped
// and reported in the batch.
func (p *SummaryPipeline) FetchAndSummarize(ctx context.Context, access MailAccess, limit int) (*emaildomain.SummaryBatch, error) {
	lister, err := access.newClient(ctx, p.provider)
	if err != nil {
		return nil, err
	}
	ids, err := lister.ListMessageIDs(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		return &emaildomain.SummaryBatch{Summaries: []*emaildomain.MailSummary{}}, nil
	}

	cached := p.cachedSummaries(access.UserKey, ids)

	results := make([]itemResult, len(ids))
	jobs := make(chan summaryJob, len(ids))
	for i, id := range ids {
		jobs <- summaryJob{index: i, emailID: id}
	}
	close(jobs)

	workers := min(p.workerCount, len(ids))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.worker(ctx, i, access, cached, jobs, results, &wg)
	}
	wg.Wait()

	batch := &emaildomain.SummaryBatch{Summaries: make([]*emaildomain.MailSummary, 0, len(ids))}
	for _, r := range results {
		if r.summary != nil {
			batch.Summaries = append(batch.Summaries, r.summary)
		} else if r.failure != nil {
			batch.Failures = append(batch.Failures, *r.failure)
		}
	}

	log.Printf("[Pipeline] %s: %d listed, %d summarized, %d dropped", access.UserKey, len(ids), len(batch.Summaries), len(batch.Failures))
	return batch, nil
}

// worker owns its own provider client for the whole run
func (p *SummaryPipeline) worker(ctx context.Context, id int, access MailAccess, cached map[string]string, jobs <-chan summaryJob, results []itemResult, wg *sync.WaitGroup) {
	defer wg.Done()

	client, err := access.newClient(ctx, p.provider)
	if err != nil {
		log.Printf("[Pipeline] Worker %d could not create client: %v", id, err)
	}

	for job := range jobs {
		if client == nil {
			results[job.index] = failed(job.emailID, emaildomain.StageFetch, err)
			continue
		}
		results[job.index] = p.processItem(ctx, client, access.UserKey, job.emailID, cached)
	}
}

func (p *SummaryPipeline) processItem(ctx context.Context, client emaildomain.MailClient, userKey, emailID string, cached map[string]string) itemResult {
	msg, err := client.GetMessage(ctx, emailID)
	if err != nil {
		return failed(emailID, emaildomain.StageFetch, err)
	}

	subject := subjectOf(&msg.Header)
	sender, senderEmail := senderOf(&msg.Header)

	summary, ok := cached[emailID]
	if !ok {
		body := htmltext.Truncate(extractBody(msg), p.maxBodyChars)
		if body == "" {
			body = "(empty message)"
		}

		policy := p.policy
		policy.OnRetry = func(attempt int, err error) {
			log.Printf("[Pipeline] Summary attempt %d for %s failed: %v, retrying", attempt, emailID, err)
		}
		summary, err = retry.DoValue(ctx, policy, func(ctx context.Context) (string, error) {
			return p.summarizer.SummarizeEmail(ctx, subject, body)
		})
		if err != nil {
			return failed(emailID, emaildomain.StageSummarize, err)
		}
		p.saveSummary(userKey, emailID, summary)
	}

	threadID := msg.ThreadID
	if threadID == "" {
		threadID = emailID
	}
	return itemResult{summary: &emaildomain.MailSummary{
		ID:          emailID,
		ThreadID:    threadID,
		Sender:      sender,
		SenderEmail: senderEmail,
		Subject:     subject,
		Summary:     summary,
		Date:        dateOf(&msg.Header, p.now),
	}}
}

func failed(emailID, stage string, err error) itemResult {
	log.Printf("[Pipeline] Dropping %s at %s: %v", emailID, stage, err)
	return itemResult{failure: &emaildomain.ItemFailure{
		EmailID: emailID,
		Stage:   stage,
		Err:     fmt.Errorf("%s %s: %w", stage, emailID, err),
	}}
}

func (p *SummaryPipeline) cachedSummaries(userKey string, ids []string) map[string]string {
	if p.summaryRepo == nil {
		return map[string]string{}
	}
	cached, err := p.summaryRepo.GetSummaries(userKey, ids)
	if err != nil {
		log.Printf("[Pipeline] Error checking summary cache: %v", err)
		return map[string]string{}
	}
	return cached
}

func (p *SummaryPipeline) saveSummary(userKey, emailID, summary string) {
	if p.summaryRepo == nil {
		return
	}
	if err := p.summaryRepo.SaveSummary(userKey, emailID, summary); err != nil {
		log.Printf("[Pipeline] Save error for %s: %v", emailID, err)
	}
}
