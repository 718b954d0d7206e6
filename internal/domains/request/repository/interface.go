package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/request/model"
)

// Repository is the borrow-request store contract. Transition is the guarded
// commit point of the workflow: whichever caller moves a request out of
// Pending first wins, the loser sees ErrAlreadyResolved.
type Repository interface {
	Create(ctx context.Context, request *model.BorrowRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.BorrowRequest, error)
	ListPending(ctx context.Context, readerID uuid.UUID) ([]model.BorrowRequest, error)
	CountPending(ctx context.Context) (int, error)

	// HasPendingForBook reports whether the reader already has a pending
	// request for the book.
	HasPendingForBook(ctx context.Context, readerID, bookID uuid.UUID) (bool, error)

	// CountPendingByBook counts pending requests for a book, excluding
	// excludeReader when it is non-nil (uuid.Nil excludes nobody).
	CountPendingByBook(ctx context.Context, bookID, excludeReader uuid.UUID) (int, error)

	// Transition moves a request out of Pending, compare-and-swap style.
	// ErrAlreadyResolved when the request is no longer Pending.
	Transition(ctx context.Context, id uuid.UUID, to model.RequestState, resolvedBy uuid.UUID, reason string) error
}
