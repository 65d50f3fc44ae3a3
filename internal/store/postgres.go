package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/socialpulse/monitor-bot/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresStore implements Store on top of PostgreSQL via gorm.
type PostgresStore struct {
	db *gorm.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to PostgreSQL and migrates the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.SocialAccount{},
		&models.Comment{},
		&models.Alert{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logrus.Info("Database connected and migrated")
	return &PostgresStore{db: db}, nil
}

// ActiveAccounts returns all accounts flagged for monitoring.
func (s *PostgresStore) ActiveAccounts(ctx context.Context) ([]models.SocialAccount, error) {
	var accounts []models.SocialAccount
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active accounts: %w", err)
	}
	return accounts, nil
}

// CommentExists reports whether a platform comment was already ingested.
func (s *PostgresStore) CommentExists(ctx context.Context, platform models.Platform, postID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("platform = ? AND post_id = ?", platform, postID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check comment existence: %w", err)
	}
	return count > 0, nil
}

// InsertComments writes a sync batch in a single bulk statement.
func (s *PostgresStore) InsertComments(ctx context.Context, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&comments).Error; err != nil {
		return fmt.Errorf("failed to insert comments: %w", err)
	}
	return nil
}

// UpdateLastSync advances an account's ingestion checkpoint.
func (s *PostgresStore) UpdateLastSync(ctx context.Context, accountID string, ts time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&models.SocialAccount{}).
		Where("id = ?", accountID).
		Update("last_sync", ts).Error
	if err != nil {
		return fmt.Errorf("failed to update last sync for account %s: %w", accountID, err)
	}
	return nil
}

// InsertAlert persists one alert record.
func (s *PostgresStore) InsertAlert(ctx context.Context, alert *models.Alert) error {
	if err := s.db.WithContext(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}
