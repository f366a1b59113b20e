package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds returned by services. Handlers map them to HTTP statuses with
// errors.Is; anything else is an internal error.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
)

// Error is a client-facing failure. Message is safe to return to callers.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

func forbiddenError(format string, args ...interface{}) error {
	return newError(ErrForbidden, format, args...)
}

func notFoundError(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

func conflictError(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

// lookupError turns a missing row into a NotFound error and wraps anything else
func lookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError("%s not found", what)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
