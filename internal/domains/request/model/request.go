package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestState is the borrow-request workflow state. Pending is the only
// non-terminal state: once resolved or cancelled a request never changes again.
type RequestState string

const (
	RequestPending   RequestState = "pending"
	RequestApproved  RequestState = "approved"
	RequestRejected  RequestState = "rejected"
	RequestCancelled RequestState = "cancelled"
)

func (s RequestState) IsTerminal() bool {
	return s != RequestPending
}

// BorrowRequest is a reader's ask to borrow a book, awaiting staff resolution.
type BorrowRequest struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	BookID      uuid.UUID    `json:"book_id" db:"book_id"`
	ReaderID    uuid.UUID    `json:"reader_id" db:"reader_id"`
	State       RequestState `json:"state" db:"state"`
	Reason      string       `json:"reason,omitempty" db:"reason"`
	RequestedAt time.Time    `json:"requested_at" db:"requested_at"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy  *uuid.UUID   `json:"resolved_by,omitempty" db:"resolved_by"`
}

// Decision is a staff verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}
