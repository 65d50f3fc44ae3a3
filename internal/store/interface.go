package store

import (
	"context"
	"time"

	"github.com/socialpulse/monitor-bot/internal/models"
)

// Store is the persistence gateway for accounts, comments and alerts.
type Store interface {
	ActiveAccounts(ctx context.Context) ([]models.SocialAccount, error)
	CommentExists(ctx context.Context, platform models.Platform, postID string) (bool, error)
	InsertComments(ctx context.Context, comments []models.Comment) error
	UpdateLastSync(ctx context.Context, accountID string, ts time.Time) error
	InsertAlert(ctx context.Context, alert *models.Alert) error
}
