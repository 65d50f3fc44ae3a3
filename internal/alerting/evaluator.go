// Package alerting raises anomaly records from freshly ingested
// comment batches.
package alerting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/socialpulse/monitor-bot/internal/models"
)

const (
	defaultSpikeThreshold = 50.0
	defaultSpikeMinBatch  = 10
)

// Evaluator inspects one sync batch against the alert threshold rules.
// Rules are evaluated independently against the current batch only;
// there is no rolling window across sync cycles.
type Evaluator struct {
	// SpikeThreshold is the negative-comment percentage that must be
	// strictly exceeded before a sentiment spike fires.
	SpikeThreshold float64
	// SpikeMinBatch is the smallest batch a sentiment spike can fire on.
	SpikeMinBatch int
}

// NewEvaluator creates an evaluator with the default thresholds.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		SpikeThreshold: defaultSpikeThreshold,
		SpikeMinBatch:  defaultSpikeMinBatch,
	}
}

// Evaluate returns the alerts triggered by the batch of comments just
// persisted for the account. Both rules may fire on the same batch.
func (e *Evaluator) Evaluate(account models.SocialAccount, batch []models.Comment) []models.Alert {
	if len(batch) == 0 {
		return nil
	}

	var alerts []models.Alert

	if alert := e.checkHighHateSpeech(account, batch); alert != nil {
		alerts = append(alerts, *alert)
	}
	if alert := e.checkSentimentSpike(account, batch); alert != nil {
		alerts = append(alerts, *alert)
	}

	return alerts
}

func (e *Evaluator) checkHighHateSpeech(account models.SocialAccount, batch []models.Comment) *models.Alert {
	var related []string
	for _, comment := range batch {
		if comment.HateSpeechRisk == models.RiskHigh {
			related = append(related, comment.PostID)
		}
	}

	if len(related) == 0 {
		return nil
	}

	return &models.Alert{
		ID:              uuid.NewString(),
		SocialAccountID: account.ID,
		Type:            models.AlertHighHateSpeech,
		Severity:        models.SeverityCritical,
		Title:           "High Hate Speech Detected",
		Description:     fmt.Sprintf("%d comments with high hate speech risk detected", len(related)),
		RelatedComments: related,
		CreatedAt:       time.Now(),
	}
}

func (e *Evaluator) checkSentimentSpike(account models.SocialAccount, batch []models.Comment) *models.Alert {
	if len(batch) < e.SpikeMinBatch {
		return nil
	}

	var related []string
	for _, comment := range batch {
		if comment.Sentiment == models.SentimentNegative {
			related = append(related, comment.PostID)
		}
	}

	percentage := float64(len(related)) / float64(len(batch)) * 100
	if percentage <= e.SpikeThreshold {
		return nil
	}

	return &models.Alert{
		ID:              uuid.NewString(),
		SocialAccountID: account.ID,
		Type:            models.AlertSentimentSpike,
		Severity:        models.SeverityHigh,
		Title:           "Negative Sentiment Spike",
		Description:     fmt.Sprintf("%.1f%% of recent comments are negative", percentage),
		RelatedComments: related,
		CreatedAt:       time.Now(),
	}
}
