// Package apperror defines the application's error taxonomy.
//
// Services return these domain errors; the handler layer translates them to
// HTTP status codes. Keeping the taxonomy in one small package means neither
// layer needs to know about the other's vocabulary.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers check for these with errors.Is, which walks the
// wrap chain via AppError.Unwrap.
var (
	// ErrNotFound covers both "row absent" and "row owned by someone else".
	// The two are deliberately not distinguished so responses never leak
	// whether another user's resource exists.
	ErrNotFound = errors.New("not found")

	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// AppError wraps a sentinel with a human-readable message for the client.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // returned to the client as {"msg": ...}
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound returns the standard not-found-or-not-authorized error for a
// resource. The message matches the original API contract, so existing
// clients keep seeing the text they test against.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found or user not authorized", resource),
	}
}

// NotFoundMsg returns a not-found error with an exact message.
func NotFoundMsg(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Err: ErrUnauthenticated, Message: message}
}
