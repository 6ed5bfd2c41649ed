// Package domain defines the error taxonomy shared by the chat service
// and the HTTP layer.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks lookups of sessions that do not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput marks requests rejected by validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable marks upstream failures (model API, webhook).
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrInternal marks everything else.
	ErrInternal = errors.New("internal error")
)

// DomainError carries a stable code and a user-facing message alongside
// the wrapped cause.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the message without internal error detail.
func (e *DomainError) UserMessage() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a not-found error for a named resource.
func NewNotFoundError(resourceType, name string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, name),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError creates a validation error.
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewUnavailableError creates an upstream-failure error.
func NewUnavailableError(message string, err error) error {
	return &DomainError{
		Code:    "UPSTREAM_UNAVAILABLE",
		Message: message,
		Err:     fmt.Errorf("%w: %v", ErrUnavailable, err),
	}
}

// NewInternalError creates an internal error without exposing detail.
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is a validation error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnavailable reports whether err is an upstream-failure error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsInternalError reports whether err is an internal error.
func IsInternalError(err error) bool {
	return errors.Is(err, ErrInternal)
}
