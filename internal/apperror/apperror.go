package apperror

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Handlers match on these with errors.Is to pick a status code;
// everything else is treated as a storage/internal failure.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAlreadyRunning = errors.New("already running")
	ErrValidation     = errors.New("validation failed")
	ErrStorage        = errors.New("storage failure")
)

type AppError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

func NotFound(format string, args ...interface{}) error {
	return &AppError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &AppError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func AlreadyRunning(format string, args ...interface{}) error {
	return &AppError{Kind: ErrAlreadyRunning, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) error {
	return &AppError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an infrastructure error. The original cause is kept for logs,
// never exposed in the HTTP response body.
func Storage(cause error, format string, args ...interface{}) error {
	return &AppError{Kind: ErrStorage, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func IsNotFound(err error) bool       { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool       { return errors.Is(err, ErrConflict) }
func IsAlreadyRunning(err error) bool { return errors.Is(err, ErrAlreadyRunning) }
func IsValidation(err error) bool     { return errors.Is(err, ErrValidation) }
