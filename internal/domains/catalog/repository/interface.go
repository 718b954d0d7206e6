package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
)

// Repository is the catalog store contract. Implementations must serialize
// copy-availability mutations per book: ClaimAvailableCopy, ReleaseCopies and
// TransitionCopy are the check-then-act points of the lending flow.
type Repository interface {
	CreateBook(ctx context.Context, book *model.Book) error
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)
	ListBooks(ctx context.Context, filter model.ListBooksFilter) ([]model.BookWithAvailability, int, error)
	CountBooks(ctx context.Context) (int, error)

	// AddCopies creates n Available copies and bumps the book's total in the
	// same atomic region.
	AddCopies(ctx context.Context, bookID uuid.UUID, n int) ([]model.Copy, error)

	// RemoveAvailableCopies deletes n Available copies and lowers the total.
	// Fails with ErrInsufficientCopies when fewer than n are Available; a copy
	// with an open loan is never Available and so can never be removed.
	RemoveAvailableCopies(ctx context.Context, bookID uuid.UUID, n int) error

	GetCopy(ctx context.Context, copyID uuid.UUID) (*model.Copy, error)
	ListCopies(ctx context.Context, bookID uuid.UUID) ([]model.Copy, error)

	// FindAvailableCopy returns some Available copy of the book without
	// claiming it. ErrNoAvailableCopy when there is none.
	FindAvailableCopy(ctx context.Context, bookID uuid.UUID) (*model.Copy, error)

	// ClaimAvailableCopy atomically flips one Available copy of the book to
	// OnLoan and returns it. Two concurrent claims on the last copy resolve to
	// exactly one winner; the loser gets ErrNoAvailableCopy.
	ClaimAvailableCopy(ctx context.Context, bookID uuid.UUID) (*model.Copy, error)

	// TransitionCopy moves a copy from -> to, guarded on its current state.
	// ErrInvalidCopyTransition when the copy is no longer in from.
	TransitionCopy(ctx context.Context, copyID uuid.UUID, from, to model.CopyState) error
}
