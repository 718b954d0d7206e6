package shared

// Asynq task type names shared between the API (enqueue side) and the worker.
const (
	TypeFineSweep       = "loan:fine_sweep"
	TypeDueSoonReminder = "loan:due_soon_reminder"
	TypeNotifyReader    = "notify:reader"
)
