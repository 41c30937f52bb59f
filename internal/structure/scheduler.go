package structure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/repotag/internal/logfields"
)

// Scheduler reloads the configuration on a fixed interval, complementing
// the file watcher on filesystems without change notifications.
type Scheduler struct {
	scheduler gocron.Scheduler
	reloader  Reloader
	logger    *slog.Logger
}

// NewScheduler creates a scheduler that reloads through reloader.
func NewScheduler(reloader Reloader, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scheduler: s, reloader: reloader, logger: logger}, nil
}

// SchedulePeriodicReload registers the reload job and returns its ID.
func (s *Scheduler) SchedulePeriodicReload(interval time.Duration) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("reload interval must be positive, got %s", interval)
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.executeReload),
		gocron.WithName("config-reload"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic reload job: %w", err)
	}
	return job.ID().String(), nil
}

func (s *Scheduler) executeReload() {
	id := uuid.NewString()
	if err := s.reloader.Reload(); err != nil {
		s.logger.Error("Scheduled reload failed", logfields.ReloadID(id), logfields.Error(err))
		return
	}
	s.logger.Debug("Scheduled reload completed", logfields.ReloadID(id))
}

// Start begins the scheduler.
func (s *Scheduler) Start(_ context.Context) {
	s.logger.Info("Starting reload scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(_ context.Context) error {
	s.logger.Info("Stopping reload scheduler")
	return s.scheduler.Shutdown()
}
