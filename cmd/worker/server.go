package main

import (
	"context"

	"github.com/hibiken/asynq"

	"library-backend/pkg/container"
	"library-backend/pkg/logger"
)

// asynqServer wraps asynq.Server with graceful shutdown
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates and starts the task server
func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: c.Config.Redis.Host},
		asynq.Config{
			Queues: map[string]int{
				c.Config.Job.NotifyQueue: 10,
				"default":                5,
			},
			Concurrency: 10,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed: "+task.Type(), err)
			}),
		},
	)

	go func() {
		logger.Info("Worker starting", map[string]interface{}{
			"redis": c.Config.Redis.Host,
		})
		if err := srv.Run(mux); err != nil {
			logger.Error("Worker failed", err)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown drains in-flight tasks before returning
func (s *asynqServer) Shutdown() {
	s.Server.Shutdown()
	logger.Info("Task server stopped", nil)
}
