package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrRequestNotFound is returned when the request id is unknown
	ErrRequestNotFound = errors.New("borrow request not found")

	// ErrAlreadyResolved is returned when acting on a request that left Pending
	ErrAlreadyResolved = errors.New("request already resolved")

	// ErrDuplicatePending is returned when the reader already has a pending request for the book
	ErrDuplicatePending = errors.New("reader already has a pending request for this book")

	// ErrFineThresholdExceeded is returned when outstanding fines block a new loan
	ErrFineThresholdExceeded = errors.New("outstanding fines exceed the borrowing threshold")
)

// NewRequestNotFoundError creates a detailed not found error
func NewRequestNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrRequestNotFound, id)
}

// IsNotFoundError checks if err is a request not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRequestNotFound)
}

// IsConflictError checks if err means the request state moved under the caller
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyResolved) || errors.Is(err, ErrDuplicatePending)
}
