package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mohit1233k/Ranking-agent/internal/config"
	"github.com/mohit1233k/Ranking-agent/internal/tracker"
)

// Service handles scheduling of ranking checks
type Service struct {
	config  *config.Config
	tracker *tracker.Service
	cron    *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, trackerService *tracker.Service) (*Service, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.TimeZone, err)
	}

	return &Service{
		config:  cfg,
		tracker: trackerService,
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
	}, nil
}

// CronExpression maps a schedule name to its cron spec. Daily and weekly
// runs fire at 09:00 so reports land at the start of the working day.
func CronExpression(schedule string) (string, error) {
	switch schedule {
	case "hourly":
		return "0 0 * * * *", nil
	case "daily":
		return "0 0 9 * * *", nil
	case "weekly":
		return "0 0 9 * * MON", nil
	case "off":
		return "", nil
	default:
		return "", fmt.Errorf("unknown schedule %q", schedule)
	}
}

// Start begins the scheduled ranking checks. With SCHEDULE=off nothing is
// registered and Start is a no-op.
func (s *Service) Start() error {
	expression, err := CronExpression(s.config.Schedule)
	if err != nil {
		return err
	}
	if expression == "" {
		logrus.Info("Scheduler disabled")
		return nil
	}

	_, err = s.cron.AddFunc(expression, func() {
		logrus.Info("Starting scheduled ranking check")
		if err := s.tracker.TryRun(context.Background(), "schedule"); err != nil {
			if errors.Is(err, tracker.ErrRunInProgress) {
				logrus.Warn("Skipping scheduled check, a run is still in progress")
				return
			}
			logrus.Errorf("Scheduled ranking check failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s schedule (%s)", s.config.Schedule, s.config.TimeZone)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
