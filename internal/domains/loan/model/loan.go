package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan records one copy lent to one reader. A loan is open while ReturnedAt
// is nil; closing it (return or loss) is a one-way transition.
type Loan struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	CopyID       uuid.UUID       `json:"copy_id" db:"copy_id"`
	BookID       uuid.UUID       `json:"book_id" db:"book_id"`
	ReaderID     uuid.UUID       `json:"reader_id" db:"reader_id"`
	BorrowedAt   time.Time       `json:"borrowed_at" db:"borrowed_at"`
	DueAt        time.Time       `json:"due_at" db:"due_at"`
	ReturnedAt   *time.Time      `json:"returned_at,omitempty" db:"returned_at"`
	Lost         bool            `json:"lost" db:"lost"`
	RenewalCount int             `json:"renewal_count" db:"renewal_count"`
	FineAmount   decimal.Decimal `json:"fine_amount" db:"fine_amount"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether the loan is still outstanding.
func (l *Loan) IsOpen() bool {
	return l.ReturnedAt == nil
}

// IsOverdue reports whether an open loan has passed its due date.
func (l *Loan) IsOverdue(asOf time.Time) bool {
	return l.IsOpen() && asOf.After(l.DueAt)
}
