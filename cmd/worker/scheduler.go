package main

import (
	"os"

	"library-backend/internal/infrastructure/queue"
	"library-backend/pkg/container"
	"library-backend/pkg/logger"
)

// asynqScheduler wraps queue.Scheduler with lifecycle logging
type asynqScheduler struct {
	*queue.Scheduler
}

// setupScheduler registers the cron jobs and starts the scheduler
func setupScheduler(c *container.Container) *asynqScheduler {
	scheduler := queue.NewScheduler(c.Config.Redis.Host, c.Config.Job)

	if err := scheduler.RegisterLendingJobs(); err != nil {
		logger.Error("Failed to register scheduled jobs", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("Scheduler starting", nil)
		if err := scheduler.Start(); err != nil {
			logger.Error("Scheduler failed", err)
			os.Exit(1)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

// Shutdown gracefully stops the scheduler
func (s *asynqScheduler) Shutdown() {
	s.Scheduler.Shutdown()
	logger.Info("Scheduler stopped", nil)
}
