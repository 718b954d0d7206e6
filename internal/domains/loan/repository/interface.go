package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/loan/model"
)

// Repository is the loan ledger contract. Close and Renew are guarded on the
// loan still being open, so a double return or a renew racing a return
// resolves to a single winner.
type Repository interface {
	Create(ctx context.Context, loan *model.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	ListByReader(ctx context.Context, readerID uuid.UUID, filter model.ListLoansFilter) ([]model.Loan, int, error)

	// GetOpenByCopy returns the open loan holding the copy.
	// ErrNoOpenLoanForCopy when the copy is not out.
	GetOpenByCopy(ctx context.Context, copyID uuid.UUID) (*model.Loan, error)

	// Close stamps returnedAt, the lost flag and the final fine, guarded on
	// the loan being open. ErrAlreadyClosed when it is not.
	Close(ctx context.Context, id uuid.UUID, returnedAt time.Time, lost bool, fine decimal.Decimal) error

	// Renew extends dueAt and bumps the renewal count, guarded on the loan
	// being open and the count still below max.
	Renew(ctx context.Context, id uuid.UUID, newDueAt time.Time, maxRenewals int) error

	// UpdateFineSnapshot stores the recomputed accrued fine on an open loan.
	UpdateFineSnapshot(ctx context.Context, id uuid.UUID, fine decimal.Decimal) error

	// ListOpenOverdue returns open loans past due as of asOf, oldest first,
	// capped at limit.
	ListOpenOverdue(ctx context.Context, asOf time.Time, limit int) ([]model.Loan, error)

	// ListOpenDueBetween returns open loans whose due date falls in [from, to).
	ListOpenDueBetween(ctx context.Context, from, to time.Time) ([]model.Loan, error)

	CountOpen(ctx context.Context) (int, error)
	CountOverdue(ctx context.Context, asOf time.Time) (int, error)
}
