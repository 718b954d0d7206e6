package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/reader/model"
)

// Repository is the reader store contract. ReserveLoanSlot/ReleaseLoanSlot are
// the guarded counters behind the max-books-per-reader policy: reservation
// must be atomic with the limit check.
type Repository interface {
	Create(ctx context.Context, reader *model.Reader) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reader, error)
	List(ctx context.Context, page, limit int) ([]model.Reader, int, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// ReserveLoanSlot increments the active loan count only while it is below
	// max. ErrLoanLimitReached when the reader is at the limit.
	ReserveLoanSlot(ctx context.Context, readerID uuid.UUID, max int) error

	// ReleaseLoanSlot decrements the active loan count (floor zero).
	ReleaseLoanSlot(ctx context.Context, readerID uuid.UUID) error

	// AddFine posts a finalized fine to the reader's outstanding balance.
	AddFine(ctx context.Context, readerID uuid.UUID, amount decimal.Decimal) error
}
