package job

import (
	"context"

	"github.com/hibiken/asynq"

	"library-backend/internal/infrastructure/notify"
	"library-backend/internal/shared/utils"
)

// NotifyReaderHandler delivers one queued notification through the sender.
type NotifyReaderHandler struct {
	sender notify.Sender
}

func NewNotifyReaderHandler(sender notify.Sender) *NotifyReaderHandler {
	return &NotifyReaderHandler{sender: sender}
}

func (h *NotifyReaderHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var n notify.Notification
	if err := utils.UnmarshalTask(t, &n); err != nil {
		return err
	}
	return h.sender.Send(ctx, n)
}
