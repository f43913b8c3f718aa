package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every AppError wraps exactly one of these so callers can
// branch with errors.Is regardless of the message.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrAuthenticity   = errors.New("authenticity check failed")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("conflict")
	ErrPersistence    = errors.New("persistence failure")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrServiceUnavail = errors.New("service unavailable")
)

// AppError is an error with a stable code and an HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func newError(code string, status int, kind error, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: kind}
}

// InvalidInput reports malformed or missing caller input.
func InvalidInput(message string) *AppError {
	return newError("INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput, message)
}

// Authenticity reports a payload whose origin could not be proven.
func Authenticity(message string) *AppError {
	return newError("AUTHENTICITY_FAILED", http.StatusUnauthorized, ErrAuthenticity, message)
}

// NotFound reports a missing resource by kind and id.
func NotFound(resource, id string) *AppError {
	return newError("NOT_FOUND", http.StatusNotFound, ErrNotFound,
		fmt.Sprintf("%s with id %s not found", resource, id))
}

// Conflict reports a state clash such as a duplicate.
func Conflict(message string) *AppError {
	return newError("CONFLICT", http.StatusConflict, ErrConflict, message)
}

// AlreadyExists is a Conflict phrased around a unique field.
func AlreadyExists(resource, field, value string) *AppError {
	return newError("ALREADY_EXISTS", http.StatusConflict, ErrConflict,
		fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return newError("UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized, message)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return newError("FORBIDDEN", http.StatusForbidden, ErrForbidden, message)
}

// Gone creates a 410 error.
func Gone(message string) *AppError {
	return newError("GONE", http.StatusGone, ErrNotFound, message)
}

// Unavailable creates a 503 error for a dependency that is down.
func Unavailable(message string) *AppError {
	return newError("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail, message)
}

// Internal hides err behind a generic 500 message.
func Internal(err error) *AppError {
	return InternalWithMessage("an internal error occurred", err)
}

// InternalWithMessage is Internal with a caller-visible message.
func InternalWithMessage(message string, err error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError, Err: err}
}

// Persistence marks a storage failure during op. The result matches
// both ErrPersistence and the underlying err.
func Persistence(op string, err error) error {
	return &AppError{
		Code:    "PERSISTENCE_ERROR",
		Message: op + " failed",
		Status:  http.StatusInternalServerError,
		Err:     errors.Join(ErrPersistence, err),
	}
}

// Wrap adds context to err.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps any error to the status a handler should write.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrAuthenticity):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
