package sources

import (
	"context"
	"time"

	"github.com/socialpulse/monitor-bot/internal/models"
)

// Fetcher retrieves a bounded page of new comments for one monitored
// account. Transport and API failures yield an empty page rather than
// an error; an error return means the account cannot be synced at all.
type Fetcher interface {
	Platform() models.Platform
	FetchComments(ctx context.Context, account models.SocialAccount, since time.Time) ([]models.RawComment, error)
}
