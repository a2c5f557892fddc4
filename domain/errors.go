package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCodeInvalid       ErrorCode = "INVALID"
	ErrCodePersistence   ErrorCode = "PERSISTENCE"
	ErrCodeInternal      ErrorCode = "INTERNAL"
)

// Error represents a domain-level error. Kind and ID are set when the error
// refers to a specific entity.
type Error struct {
	Code    ErrorCode
	Message string
	Kind    Kind
	ID      int
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

// NotFound reports a lookup of an id that is absent from the collection of the given kind.
func NotFound(kind Kind, id int) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %d does not exist", kind.Label(), id),
		Kind:    kind,
		ID:      id,
	}
}

// AlreadyExists reports an attempt to create something that must not carry state yet.
func AlreadyExists(kind Kind, id int, message string) *Error {
	return &Error{
		Code:    ErrCodeAlreadyExists,
		Message: message,
		Kind:    kind,
		ID:      id,
	}
}

// Invalid reports a structural validation failure.
func Invalid(message string) *Error {
	return NewError(ErrCodeInvalid, message)
}

// Persistence wraps an I/O or decoding failure of the snapshot.
func Persistence(message string, err error) *Error {
	return WrapError(ErrCodePersistence, message, err)
}

// Internal reports a broken store invariant.
func Internal(message string) *Error {
	return NewError(ErrCodeInternal, message)
}

// Common domain errors.
var (
	ErrBlankName        = Invalid("name must not be blank")
	ErrBlankDescription = Invalid("description must not be blank")
	ErrInvalidPayload   = Invalid("invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
