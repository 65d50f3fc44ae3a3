package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/socialpulse/monitor-bot/internal/config"
	"github.com/socialpulse/monitor-bot/internal/monitoring"
)

// Service handles scheduling of fleet syncs
type Service struct {
	config      *config.Config
	syncService *monitoring.Service
	cron        *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, syncService *monitoring.Service) *Service {
	return &Service{
		config:      cfg,
		syncService: syncService,
		cron:        cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled syncing
func (s *Service) Start() error {
	var cronExpression string

	switch s.config.SyncSchedule {
	case "hourly":
		cronExpression = "0 0 * * * *"
	case "daily":
		// Run daily at 9 AM UTC
		cronExpression = "0 0 9 * * *"
	default:
		cronExpression = "0 0 * * * *"
	}

	_, err := s.cron.AddFunc(cronExpression, func() {
		logrus.Info("Starting scheduled fleet sync")
		outcomes, err := s.syncService.SyncAll(context.Background())
		if err != nil {
			logrus.Errorf("Scheduled fleet sync failed: %v", err)
			return
		}

		failed := 0
		for _, outcome := range outcomes {
			if !outcome.Success {
				failed++
			}
		}
		if failed > 0 {
			logrus.Warnf("Fleet sync finished with %d of %d accounts failing", failed, len(outcomes))
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s sync schedule", s.config.SyncSchedule)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
