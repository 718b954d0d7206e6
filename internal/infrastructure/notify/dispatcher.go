package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind of reader-facing notice.
type Kind string

const (
	KindRequestResolved Kind = "request_resolved"
	KindDueSoon         Kind = "due_soon"
	KindOverdue         Kind = "overdue"
	KindLoanReturned    Kind = "loan_returned"
)

// Notification is one message for one reader.
type Notification struct {
	ReaderID uuid.UUID `json:"reader_id"`
	Kind     Kind      `json:"kind"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// Dispatcher hands a notification to the delivery channel. Dispatch is
// fire-and-forget from the caller's point of view: failures are logged by the
// caller and never roll back the command that produced the notice.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// Sender performs the actual delivery on the worker side.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}
