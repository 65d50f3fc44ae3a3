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

const twitterPageSize = 100

// TwitterFetcher pulls an account's recent tweets through the v2 API.
type TwitterFetcher struct {
	baseURL string
	client  *resty.Client
}

var _ Fetcher = (*TwitterFetcher)(nil)

type twitterTimelineResponse struct {
	Data []twitterTweet `json:"data"`
}

type twitterTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	AuthorID      string `json:"author_id"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		RetweetCount int `json:"retweet_count"`
		LikeCount    int `json:"like_count"`
		ReplyCount   int `json:"reply_count"`
	} `json:"public_metrics"`
}

// NewTwitterFetcher creates a Twitter API v2 backed fetcher.
func NewTwitterFetcher() *TwitterFetcher {
	return &TwitterFetcher{
		baseURL: "https://api.twitter.com/2",
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "SocialPulse-Monitor-Bot/1.0"),
	}
}

func (t *TwitterFetcher) Platform() models.Platform {
	return models.PlatformTwitter
}

// FetchComments returns the account's tweets newer than the checkpoint.
// Failures, including rate limiting, are logged and produce an empty
// page instead of failing the account's sync cycle.
func (t *TwitterFetcher) FetchComments(ctx context.Context, account models.SocialAccount, since time.Time) ([]models.RawComment, error) {
	url := fmt.Sprintf("%s/users/%s/tweets", t.baseURL, account.AccountID)

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+account.AccessToken).
		SetQueryParams(map[string]string{
			"tweet.fields": "created_at,public_metrics",
			"max_results":  fmt.Sprintf("%d", twitterPageSize),
		}).
		Get(url)

	if err != nil {
		logrus.Errorf("Failed to fetch tweets for account %s: %v", account.AccountID, err)
		return []models.RawComment{}, nil
	}

	if resp.StatusCode() == 429 {
		logrus.Warnf("Twitter API rate limit hit for account %s - skipping this cycle", account.AccountID)
		return []models.RawComment{}, nil
	}

	if resp.StatusCode() != 200 {
		logrus.Errorf("Twitter API returned status %d for account %s: %s", resp.StatusCode(), account.AccountID, string(resp.Body()))
		return []models.RawComment{}, nil
	}

	var timeline twitterTimelineResponse
	if err := json.Unmarshal(resp.Body(), &timeline); err != nil {
		logrus.Errorf("Failed to parse Twitter response for account %s: %v", account.AccountID, err)
		return []models.RawComment{}, nil
	}

	return mapTweets(timeline.Data, since), nil
}

func mapTweets(tweets []twitterTweet, since time.Time) []models.RawComment {
	raw := make([]models.RawComment, 0, len(tweets))

	for _, tweet := range tweets {
		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			logrus.Errorf("Failed to parse Twitter timestamp %q: %v", tweet.CreatedAt, err)
			continue
		}

		if !createdAt.After(since) {
			continue
		}

		raw = append(raw, models.RawComment{
			PostID:    tweet.ID,
			Content:   tweet.Text,
			Author:    tweet.AuthorID,
			AuthorID:  tweet.AuthorID,
			CreatedAt: createdAt,
		})
	}

	return raw
}
