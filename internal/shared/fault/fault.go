package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers. Every error that crosses a service
// boundary carries exactly one Kind; handlers translate kinds to HTTP statuses.
type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindPolicyViolation  Kind = "POLICY_VIOLATION"
	KindInfrastructure   Kind = "INFRASTRUCTURE_ERROR"
)

// Error is the taxonomy error. It wraps an optional cause so domain sentinels
// still match with errors.Is.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, nil, format, args...)
}

func PermissionDenied(format string, args ...interface{}) *Error {
	return newError(KindPermissionDenied, nil, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, nil, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, nil, format, args...)
}

func PolicyViolation(format string, args ...interface{}) *Error {
	return newError(KindPolicyViolation, nil, format, args...)
}

func Infrastructure(cause error, format string, args ...interface{}) *Error {
	return newError(KindInfrastructure, cause, format, args...)
}

// Wrap attaches a Kind to an existing domain sentinel.
// errors.Is(Wrap(k, sentinel, ...), sentinel) holds.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return newError(kind, cause, format, args...)
}

// KindOf extracts the Kind from err. Unclassified errors are treated as
// infrastructure failures - the only condition fatal to the operation.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInfrastructure
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
