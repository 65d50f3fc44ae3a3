package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/socialpulse/monitor-bot/internal/models"
)

const facebookPageSize = 100

// FacebookFetcher pulls page feed comments through the Graph API.
type FacebookFetcher struct {
	baseURL string
	client  *resty.Client
}

var _ Fetcher = (*FacebookFetcher)(nil)

type facebookFeedResponse struct {
	Data []facebookComment `json:"data"`
}

type facebookComment struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	From    struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	} `json:"from"`
	CreatedTime string `json:"created_time"`
}

// NewFacebookFetcher creates a Graph API backed fetcher.
func NewFacebookFetcher() *FacebookFetcher {
	return &FacebookFetcher{
		baseURL: "https://graph.facebook.com/v18.0",
		client:  resty.New().SetTimeout(30 * time.Second),
	}
}

func (f *FacebookFetcher) Platform() models.Platform {
	return models.PlatformFacebook
}

// FetchComments returns the account's feed comments newer than the
// checkpoint. Any transport or API failure is logged and produces an
// empty page so the sync cycle simply sees no new comments.
func (f *FacebookFetcher) FetchComments(ctx context.Context, account models.SocialAccount, since time.Time) ([]models.RawComment, error) {
	url := fmt.Sprintf("%s/%s/feed", f.baseURL, account.AccountID)

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_token": account.AccessToken,
			"fields":       "id,message,from,created_time",
			"limit":        fmt.Sprintf("%d", facebookPageSize),
		}).
		Get(url)

	if err != nil {
		logrus.Errorf("Failed to fetch Facebook comments for account %s: %v", account.AccountID, err)
		return []models.RawComment{}, nil
	}

	if resp.StatusCode() != 200 {
		logrus.Errorf("Facebook API returned status %d for account %s", resp.StatusCode(), account.AccountID)
		return []models.RawComment{}, nil
	}

	var feed facebookFeedResponse
	if err := json.Unmarshal(resp.Body(), &feed); err != nil {
		logrus.Errorf("Failed to parse Facebook response for account %s: %v", account.AccountID, err)
		return []models.RawComment{}, nil
	}

	return mapFacebookComments(feed.Data, since), nil
}

func mapFacebookComments(comments []facebookComment, since time.Time) []models.RawComment {
	raw := make([]models.RawComment, 0, len(comments))

	for _, comment := range comments {
		createdAt, err := parseFacebookTime(comment.CreatedTime)
		if err != nil {
			logrus.Errorf("Failed to parse Facebook timestamp %q: %v", comment.CreatedTime, err)
			continue
		}

		if !createdAt.After(since) {
			continue
		}

		raw = append(raw, models.RawComment{
			PostID:    comment.ID,
			Content:   comment.Message,
			Author:    comment.From.Name,
			AuthorID:  comment.From.ID,
			CreatedAt: createdAt,
		})
	}

	return raw
}

// Graph API timestamps use a numeric zone offset without a colon.
func parseFacebookTime(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05-0700", value)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
