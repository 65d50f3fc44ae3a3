// Package monitoring drives the ingestion pipeline: fetch, dedup,
// classify, persist, alert and checkpoint, per account and across the
// whole fleet.
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/socialpulse/monitor-bot/internal/alerting"
	"github.com/socialpulse/monitor-bot/internal/archive"
	"github.com/socialpulse/monitor-bot/internal/classifier"
	"github.com/socialpulse/monitor-bot/internal/language"
	"github.com/socialpulse/monitor-bot/internal/models"
	"github.com/socialpulse/monitor-bot/internal/sources"
	"github.com/socialpulse/monitor-bot/internal/store"
)

// Service syncs monitored accounts one at a time to bound load on the
// classifier API and the database.
type Service struct {
	store      store.Store
	classifier classifier.Classifier
	fetchers   map[models.Platform]sources.Fetcher
	evaluator  *alerting.Evaluator
	archiver   archive.Archiver // optional, may be nil
	metrics    *Metrics
	mu         sync.RWMutex
}

// Metrics holds counters from the most recent fleet sync.
type Metrics struct {
	AccountsSynced     int            `json:"accounts_synced"`
	AccountsFailed     int            `json:"accounts_failed"`
	CommentsIngested   int            `json:"comments_ingested"`
	AlertsRaised       int            `json:"alerts_raised"`
	SentimentBreakdown map[string]int `json:"sentiment_breakdown"`
	LastRun            time.Time      `json:"last_run"`
	LastRunDuration    string         `json:"last_run_duration"`
}

// NewService creates a sync service over the given collaborators.
// archiver may be nil when run archiving is not configured.
func NewService(st store.Store, cl classifier.Classifier, fetchers []sources.Fetcher, evaluator *alerting.Evaluator, archiver archive.Archiver) *Service {
	byPlatform := make(map[models.Platform]sources.Fetcher, len(fetchers))
	for _, fetcher := range fetchers {
		byPlatform[fetcher.Platform()] = fetcher
	}

	return &Service{
		store:      st,
		classifier: cl,
		fetchers:   byPlatform,
		evaluator:  evaluator,
		archiver:   archiver,
		metrics: &Metrics{
			SentimentBreakdown: make(map[string]int),
		},
	}
}

// SyncAll syncs every active account in retrieval order. Each account
// is isolated: a failing account yields a failure outcome and the rest
// of the fleet proceeds. The error return is reserved for being unable
// to load the account list at all.
func (s *Service) SyncAll(ctx context.Context) ([]models.SyncOutcome, error) {
	start := time.Now()
	logrus.Info("Starting fleet sync")

	accounts, err := s.store.ActiveAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active accounts: %w", err)
	}

	s.resetRunMetrics()

	outcomes := make([]models.SyncOutcome, 0, len(accounts))
	for _, account := range accounts {
		outcome := s.SyncAccount(ctx, account)
		if !outcome.Success {
			logrus.Errorf("Sync failed for account %s (%s): %s", account.ID, account.Platform, outcome.Error)
		}
		outcomes = append(outcomes, outcome)
	}

	s.updateMetrics(outcomes, time.Since(start))
	logrus.Infof("Fleet sync completed in %v: %d accounts", time.Since(start), len(outcomes))

	return outcomes, nil
}

// SyncAccount runs one account through the pipeline: fetch, dedup,
// classify, persist, evaluate alerts, advance the checkpoint. The
// checkpoint only moves after a successful persist, so a failed cycle
// refetches the same window next time.
func (s *Service) SyncAccount(ctx context.Context, account models.SocialAccount) models.SyncOutcome {
	outcome := models.SyncOutcome{
		AccountID: account.ID,
		Platform:  account.Platform,
	}

	fetcher, ok := s.fetchers[account.Platform]
	if !ok {
		outcome.Error = fmt.Sprintf("no fetcher registered for platform %s", account.Platform)
		return outcome
	}

	raw, err := fetcher.FetchComments(ctx, account, account.LastSync)
	if err != nil {
		outcome.Error = fmt.Sprintf("fetch failed: %v", err)
		return outcome
	}
	logrus.Infof("Fetched %d comments for account %s (%s)", len(raw), account.ID, account.Platform)

	fresh, err := s.filterExisting(ctx, account.Platform, raw)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	comments := s.classifyComments(ctx, account, fresh)

	if len(comments) > 0 {
		if err := s.store.InsertComments(ctx, comments); err != nil {
			// Checkpoint untouched so the same window is retried.
			outcome.Error = fmt.Sprintf("persist failed: %v", err)
			return outcome
		}

		raised := s.raiseAlerts(ctx, account, comments)
		s.recordBatch(comments, raised)
		s.archiveBatch(account, comments)
	}

	if err := s.store.UpdateLastSync(ctx, account.ID, time.Now()); err != nil {
		outcome.CommentCount = len(comments)
		outcome.Error = fmt.Sprintf("checkpoint update failed: %v", err)
		return outcome
	}

	outcome.CommentCount = len(comments)
	outcome.Success = true
	return outcome
}

// filterExisting drops comments already ingested for the platform.
// The check runs per comment before any classification call is spent
// on it.
func (s *Service) filterExisting(ctx context.Context, platform models.Platform, raw []models.RawComment) ([]models.RawComment, error) {
	fresh := make([]models.RawComment, 0, len(raw))

	for _, comment := range raw {
		exists, err := s.store.CommentExists(ctx, platform, comment.PostID)
		if err != nil {
			return nil, fmt.Errorf("dedup check failed for post %s: %w", comment.PostID, err)
		}
		if exists {
			continue
		}
		fresh = append(fresh, comment)
	}

	return fresh, nil
}

// classifyComments attaches detected languages, batch-classifies and
// builds the persistable rows. Classification never fails; individual
// remote failures come back as fallback results.
func (s *Service) classifyComments(ctx context.Context, account models.SocialAccount, raw []models.RawComment) []models.Comment {
	if len(raw) == 0 {
		return nil
	}

	inputs := make([]classifier.Input, len(raw))
	languages := make([]models.Language, len(raw))
	for i, comment := range raw {
		languages[i] = language.Detect(comment.Content)
		inputs[i] = classifier.Input{
			Content:  comment.Content,
			Author:   comment.Author,
			Platform: account.Platform,
			Language: languages[i],
		}
	}

	results := s.classifier.ClassifyBatch(ctx, inputs)

	comments := make([]models.Comment, len(raw))
	for i, comment := range raw {
		result := results[i]
		comments[i] = models.Comment{
			ID:              uuid.NewString(),
			SocialAccountID: account.ID,
			Platform:        account.Platform,
			PostID:          comment.PostID,
			Content:         comment.Content,
			Author:          comment.Author,
			AuthorID:        comment.AuthorID,
			Language:        languages[i],
			Timestamp:       comment.CreatedAt,
			Sentiment:       result.Sentiment,
			HateSpeechRisk:  result.HateSpeechRisk,
			Confidence:      result.Confidence,
			Analysis: models.Analysis{
				Reasoning:  result.Reasoning,
				KeyPhrases: result.KeyPhrases,
				Fallback:   result.Fallback,
			},
			CreatedAt: time.Now(),
		}
	}

	return comments
}

// raiseAlerts evaluates the freshly persisted batch and returns how
// many alerts were written. Alert insert failures are logged and
// swallowed; they never fail the sync.
func (s *Service) raiseAlerts(ctx context.Context, account models.SocialAccount, batch []models.Comment) int {
	raised := 0
	for _, alert := range s.evaluator.Evaluate(account, batch) {
		a := alert
		if err := s.store.InsertAlert(ctx, &a); err != nil {
			logrus.Errorf("Failed to create %s alert for account %s: %v", alert.Type, account.ID, err)
			continue
		}
		logrus.Infof("Raised %s alert (%s) for account %s", alert.Type, alert.Severity, account.ID)
		raised++
	}
	return raised
}

// archiveBatch snapshots the persisted batch for audit. Failures are
// logged and swallowed.
func (s *Service) archiveBatch(account models.SocialAccount, batch []models.Comment) {
	if s.archiver == nil {
		return
	}

	data, err := json.Marshal(batch)
	if err != nil {
		logrus.Errorf("Failed to marshal archive batch for account %s: %v", account.ID, err)
		return
	}

	name := fmt.Sprintf("comments/%s/%s.json", account.ID, time.Now().Format("2006-01-02-15-04-05"))
	if err := s.archiver.Store(name, data); err != nil {
		logrus.Errorf("Failed to archive batch for account %s: %v", account.ID, err)
	}
}

func (s *Service) resetRunMetrics() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.AccountsSynced = 0
	s.metrics.AccountsFailed = 0
	s.metrics.CommentsIngested = 0
	s.metrics.AlertsRaised = 0
	s.metrics.SentimentBreakdown = make(map[string]int)
}

// recordBatch folds one account's persisted batch into the run metrics.
func (s *Service) recordBatch(batch []models.Comment, alertsRaised int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.AlertsRaised += alertsRaised
	for _, comment := range batch {
		s.metrics.SentimentBreakdown[string(comment.Sentiment)]++
	}
}

func (s *Service) updateMetrics(outcomes []models.SyncOutcome, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.LastRun = time.Now()
	s.metrics.LastRunDuration = duration.String()

	for _, outcome := range outcomes {
		if outcome.Success {
			s.metrics.AccountsSynced++
		} else {
			s.metrics.AccountsFailed++
		}
		s.metrics.CommentsIngested += outcome.CommentCount
	}
}

// GetMetrics returns current metrics as JSON.
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
