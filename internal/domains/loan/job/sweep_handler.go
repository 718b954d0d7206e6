package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/domains/fine"
	"library-backend/pkg/logger"
)

// FineSweepHandler runs the periodic fine recomputation pass.
type FineSweepHandler struct {
	sweeper *fine.Sweeper
}

func NewFineSweepHandler(sweeper *fine.Sweeper) *FineSweepHandler {
	return &FineSweepHandler{sweeper: sweeper}
}

func (h *FineSweepHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	updated, err := h.sweeper.Sweep(ctx, time.Now())
	if err != nil {
		logger.Error("Fine sweep failed", err)
		return err
	}

	logger.Info("Fine sweep task finished", map[string]interface{}{
		"updated": updated,
	})
	return nil
}

// DueSoonHandler reminds readers of loans approaching their due date.
type DueSoonHandler struct {
	sweeper *fine.Sweeper
	window  time.Duration
}

func NewDueSoonHandler(sweeper *fine.Sweeper, window time.Duration) *DueSoonHandler {
	return &DueSoonHandler{sweeper: sweeper, window: window}
}

func (h *DueSoonHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	notified, err := h.sweeper.RemindDueSoon(ctx, time.Now(), h.window)
	if err != nil {
		logger.Error("Due-soon reminder failed", err)
		return err
	}

	logger.Info("Due-soon reminder task finished", map[string]interface{}{
		"notified": notified,
	})
	return nil
}
