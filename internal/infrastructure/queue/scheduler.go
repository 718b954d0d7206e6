package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/config"
	"library-backend/internal/shared"
	"library-backend/pkg/logger"
)

// Scheduler registers the periodic lending jobs with asynq. Both jobs are
// idempotent sweeps, so an overlapping or repeated run is harmless.
type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterLendingJobs wires up every scheduled job.
func (s *Scheduler) RegisterLendingJobs() error {
	if err := s.registerFineSweepJob(); err != nil {
		return err
	}
	if err := s.registerDueSoonReminderJob(); err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) registerFineSweepJob() error {
	payload, err := json.Marshal(map[string]interface{}{
		"batch_limit": s.jobConfig.SweepBatchLimit,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeFineSweep, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.FineSweepCron,
		task,
		asynq.Queue(s.jobConfig.NotifyQueue),
		asynq.MaxRetry(1),
		asynq.Timeout(s.jobConfig.SchedulerTimeout),
	)
	if err != nil {
		logger.Error("Failed to register fine sweep job", err)
		return err
	}

	logger.Info("Registered fine sweep job", map[string]interface{}{
		"cron": s.jobConfig.FineSweepCron,
	})
	return nil
}

func (s *Scheduler) registerDueSoonReminderJob() error {
	payload, err := json.Marshal(map[string]interface{}{
		"window": s.jobConfig.DueSoonWindow.String(),
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeDueSoonReminder, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.DueSoonCron,
		task,
		asynq.Queue(s.jobConfig.NotifyQueue),
		asynq.MaxRetry(1),
		asynq.Timeout(s.jobConfig.SchedulerTimeout),
	)
	if err != nil {
		logger.Error("Failed to register due-soon reminder job", err)
		return err
	}

	logger.Info("Registered due-soon reminder job", map[string]interface{}{
		"cron":   s.jobConfig.DueSoonCron,
		"window": s.jobConfig.DueSoonWindow.String(),
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
