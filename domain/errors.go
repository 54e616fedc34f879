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
	ErrUserNotFound      = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound      = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound   = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized      = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload    = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidPriority   = NewError(ErrCodeInvalid, "priority must be one of low, medium, high")
	ErrUnsupportedFilter = NewError(ErrCodeInvalid, "only userEmail == <email> subscriptions are supported")
)

// Identity failures. Their messages are shown to the user as-is.
var (
	ErrInvalidEmail      = NewError(ErrCodeInvalid, "auth/invalid-email: the email address is badly formatted")
	ErrEmailInUse        = NewError(ErrCodeConflict, "auth/email-already-in-use: an account with this email already exists")
	ErrInvalidCredential = NewError(ErrCodeUnauthorized, "auth/invalid-credential: email or password is incorrect")
)

// WeakPasswordError reports a password shorter than minLength characters.
func WeakPasswordError(minLength int) *Error {
	return NewError(ErrCodeInvalid, fmt.Sprintf("auth/weak-password: password should be at least %d characters", minLength))
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
