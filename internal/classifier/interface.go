package classifier

import (
	"context"

	"github.com/socialpulse/monitor-bot/internal/models"
)

// Input is one comment prepared for classification.
type Input struct {
	Content  string
	Author   string
	Platform models.Platform
	Language models.Language
}

// Classifier scores comments for sentiment and hate-speech risk. Both
// methods always return usable results; remote failures degrade to the
// keyword fallback instead of surfacing errors.
type Classifier interface {
	Classify(ctx context.Context, input Input) models.Classification
	ClassifyBatch(ctx context.Context, inputs []Input) []models.Classification
}
