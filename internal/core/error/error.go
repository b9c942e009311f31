package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage is used when a Redis key does not exist.
	RedisNotFoundMessage = "redis key not found"
	// StorageErrorMessage describes local storage (file) failures.
	StorageErrorMessage = "storage operation failed"
	// StorageNotFoundMessage is used when nothing has been persisted yet.
	StorageNotFoundMessage = "nothing persisted"
	// DecodeErrorMessage describes persisted data that could not be decoded.
	DecodeErrorMessage = "persisted data is invalid"
)

// ErrNotFound is the sentinel every storage backend reports for a missing key.
var ErrNotFound = errors.New("not found")

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NotFound reports whether err carries a not-found status or the ErrNotFound sentinel.
func NotFound(err error) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status == http.StatusNotFound {
		return true
	}
	return errors.Is(err, ErrNotFound)
}

// Decode wraps an unmarshal/validation failure of persisted data.
func Decode(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusUnprocessableEntity, DecodeErrorMessage)
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
