package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrReaderNotFound is returned when the reader id is unknown
	ErrReaderNotFound = errors.New("reader not found")

	// ErrDuplicateEmail is returned when creating a reader with an existing email
	ErrDuplicateEmail = errors.New("a reader with this email already exists")

	// ErrLoanLimitReached is returned when the reader already holds the maximum number of open loans
	ErrLoanLimitReached = errors.New("reader has reached the loan limit")

	// ErrReaderInactive is returned when a deactivated reader tries to borrow
	ErrReaderInactive = errors.New("reader account is deactivated")
)

// NewReaderNotFoundError creates a detailed not found error
func NewReaderNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrReaderNotFound, id)
}

// NewLoanLimitError creates an error with the configured limit
func NewLoanLimitError(max int) error {
	return fmt.Errorf("%w: max=%d", ErrLoanLimitReached, max)
}

// IsNotFoundError checks if err is a reader not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrReaderNotFound)
}

// IsPolicyError checks if err is a lending-policy failure
func IsPolicyError(err error) bool {
	return errors.Is(err, ErrLoanLimitReached) || errors.Is(err, ErrReaderInactive)
}
