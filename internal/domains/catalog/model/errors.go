package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrBookNotFound is returned when the book id is unknown
	ErrBookNotFound = errors.New("book not found")

	// ErrCopyNotFound is returned when the copy id is unknown
	ErrCopyNotFound = errors.New("copy not found")

	// ErrDuplicateISBN is returned when adding a book whose ISBN already exists
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")

	// ErrNoAvailableCopy is returned when no copy of the book is available
	ErrNoAvailableCopy = errors.New("no available copy for this book")

	// ErrInsufficientCopies is returned when fewer copies are available than requested for removal
	ErrInsufficientCopies = errors.New("insufficient available copies")

	// ErrInvalidCopyTransition is returned when a copy state change does not match its current state
	ErrInvalidCopyTransition = errors.New("invalid copy state transition")
)

// NewBookNotFoundError creates a detailed not found error
func NewBookNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrBookNotFound, id)
}

// NewInsufficientCopiesError creates an error with removal details
func NewInsufficientCopiesError(requested, available int) error {
	return fmt.Errorf("%w: requested=%d, available=%d", ErrInsufficientCopies, requested, available)
}

// IsNotFoundError checks if err is a catalog not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookNotFound) || errors.Is(err, ErrCopyNotFound)
}

// IsConflictError checks if err means the caller's view of copy state is stale
func IsConflictError(err error) bool {
	return errors.Is(err, ErrNoAvailableCopy) ||
		errors.Is(err, ErrInsufficientCopies) ||
		errors.Is(err, ErrInvalidCopyTransition) ||
		errors.Is(err, ErrDuplicateISBN)
}
