package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrLoanNotFound is returned when the loan id is unknown
	ErrLoanNotFound = errors.New("loan not found")

	// ErrAlreadyClosed is returned when closing a loan that is no longer open
	ErrAlreadyClosed = errors.New("loan already closed")

	// ErrRenewalLimitReached is returned when the loan is out of renewals
	ErrRenewalLimitReached = errors.New("renewal limit reached")

	// ErrRenewalHold is returned when pending requests for the book block renewal
	ErrRenewalHold = errors.New("renewal blocked by pending requests for this book")

	// ErrNoOpenLoanForCopy is returned when a copy has no open loan to act on
	ErrNoOpenLoanForCopy = errors.New("no open loan for this copy")
)

// NewLoanNotFoundError creates a detailed not found error
func NewLoanNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrLoanNotFound, id)
}

// IsNotFoundError checks if err is a loan not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrLoanNotFound) || errors.Is(err, ErrNoOpenLoanForCopy)
}

// IsRenewalDenied checks if err is one of the renewal policy refusals
func IsRenewalDenied(err error) bool {
	return errors.Is(err, ErrRenewalLimitReached) || errors.Is(err, ErrRenewalHold)
}
