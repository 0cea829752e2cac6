package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrLeadNotFound        = NewError(ErrCodeNotFound, "lead not found")
	ErrObservationNotFound = NewError(ErrCodeNotFound, "observation not found")
	ErrGoalNotFound        = NewError(ErrCodeNotFound, "goal not found")
	ErrUserNotFound        = NewError(ErrCodeNotFound, "user not found")
	ErrSessionNotFound     = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized        = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrAdminOnly           = NewError(ErrCodeForbidden, "admin role required")
	ErrNotOwner            = NewError(ErrCodeForbidden, "caller does not own the record")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")

	// ErrCredentialExpired marks a store call rejected because the backing
	// credential lapsed. The usecase layer refreshes the credential once and
	// retries the failed operation exactly once.
	ErrCredentialExpired = NewError(ErrCodeUnauthorized, "store credential expired")

	// ErrStoreUnavailable marks any other infrastructure failure. Surfaced to
	// the caller without retry.
	ErrStoreUnavailable = NewError(ErrCodeUnavailable, "record store unavailable")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
