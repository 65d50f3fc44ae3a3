package models

import "time"

// Platform identifies which social network a comment or account belongs to.
type Platform string

const (
	PlatformFacebook Platform = "facebook"
	PlatformTwitter  Platform = "twitter"
)

// Sentiment is the classified tone of a comment.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// RiskLevel is the classified hate-speech risk of a comment.
type RiskLevel string

const (
	RiskNone   RiskLevel = "none"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Language is the detected language of a comment.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageThai    Language = "th"
)

// AlertType identifies which threshold rule produced an alert.
type AlertType string

const (
	AlertHighHateSpeech AlertType = "high_hate_speech"
	AlertSentimentSpike AlertType = "sentiment_spike"
	AlertVolumeSpike    AlertType = "volume_spike"
)

// AlertSeverity ranks how urgent an alert is.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// SocialAccount is a monitored platform identity. Only active accounts
// participate in fleet syncs; LastSync is the ingestion checkpoint and
// is only ever advanced by the sync service.
type SocialAccount struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"index" json:"user_id"`
	Platform       Platform  `gorm:"not null" json:"platform"`
	AccountName    string    `json:"account_name"`
	AccountID      string    `gorm:"not null" json:"account_id"`
	AccessToken    string    `json:"-"`
	IsActive       bool      `gorm:"index" json:"is_active"`
	LastSync       time.Time `json:"last_sync"`
	FollowersCount int       `json:"followers_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RawComment is the platform-neutral shape a fetcher produces before
// classification. It is never persisted directly.
type RawComment struct {
	PostID    string    `json:"post_id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Classification is the per-comment result produced by the classifier.
// Fallback marks results derived from the local keyword heuristic
// rather than the remote model.
type Classification struct {
	Sentiment      Sentiment `json:"sentiment"`
	HateSpeechRisk RiskLevel `json:"hateSpeechRisk"`
	Confidence     float64   `json:"confidence"`
	Reasoning      string    `json:"reasoning"`
	KeyPhrases     []string  `json:"keyPhrases"`
	Fallback       bool      `json:"fallback,omitempty"`
}

// Analysis is the audit payload retained alongside each comment.
type Analysis struct {
	Reasoning  string   `json:"reasoning"`
	KeyPhrases []string `json:"keyPhrases"`
	Fallback   bool     `json:"fallback,omitempty"`
}

// Comment is one ingested unit of user-generated content. A
// (platform, post_id) pair is unique in the store; rows are written
// once and never mutated by the sync service.
type Comment struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	SocialAccountID string    `gorm:"index;not null" json:"social_account_id"`
	Platform        Platform  `gorm:"uniqueIndex:idx_comments_platform_post;not null" json:"platform"`
	PostID          string    `gorm:"uniqueIndex:idx_comments_platform_post;not null" json:"post_id"`
	Content         string    `json:"content"`
	Author          string    `json:"author"`
	AuthorID        string    `json:"author_id"`
	Language        Language  `json:"language"`
	Timestamp       time.Time `json:"timestamp"`
	Sentiment       Sentiment `json:"sentiment"`
	HateSpeechRisk  RiskLevel `json:"hate_speech_risk"`
	Confidence      float64   `json:"confidence"`
	Analysis        Analysis  `gorm:"serializer:json" json:"analysis"`
	CreatedAt       time.Time `json:"created_at"`
}

// Alert is a derived anomaly record raised by the alert evaluator.
// Only the read/resolved flags change after creation, and only through
// the dashboard.
type Alert struct {
	ID              string        `gorm:"primaryKey" json:"id"`
	SocialAccountID string        `gorm:"index;not null" json:"social_account_id"`
	Type            AlertType     `gorm:"not null" json:"type"`
	Severity        AlertSeverity `gorm:"not null" json:"severity"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	RelatedComments []string      `gorm:"serializer:json" json:"related_comments"`
	IsRead          bool          `json:"is_read"`
	IsResolved      bool          `json:"is_resolved"`
	CreatedAt       time.Time     `json:"created_at"`
}

// SyncOutcome is the per-account result of one sync attempt. A fleet
// sync returns one outcome per active account; callers must inspect
// each Success flag, there is no single fleet-wide verdict.
type SyncOutcome struct {
	AccountID    string   `json:"account_id"`
	Platform     Platform `json:"platform"`
	CommentCount int      `json:"comment_count"`
	Success      bool     `json:"success"`
	Error        string   `json:"error,omitempty"`
}
