package errx

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
)

// Sentinels for errors.Is checks across package boundaries.
var (
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrRequestFailed    = errors.New("request failed")
	ErrAbortedRequest   = errors.New("request aborted")
	ErrUpstreamStatus   = errors.New("upstream returned non-success status")
	ErrLocationNotFound = errors.New("location not found")
	ErrNoService        = errors.New("no service for intent")
)

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

// StatusOf returns the HTTP status carried by err, or 500 when err is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MissingParameter reports a required input that was not supplied.
func MissingParameter(name string) *AppError {
	return New(ErrMissingParameter, http.StatusBadRequest, fmt.Sprintf("missing required parameter %q", name))
}

// InvalidParameter reports a supplied input that cannot be used.
func InvalidParameter(name, reason string) *AppError {
	return New(ErrInvalidParameter, http.StatusBadRequest, fmt.Sprintf("invalid parameter %q: %s", name, reason))
}

// RequestFailed reports an exhausted attempt budget with no cached value to fall back on.
// The last underlying error stays reachable through errors.Is / errors.As.
func RequestFailed(service, endpoint string, attempts int, last error) *AppError {
	return New(
		fmt.Errorf("%w: %w", ErrRequestFailed, last),
		http.StatusBadGateway,
		fmt.Sprintf("%s request to %s failed after %d attempts", service, endpoint, attempts),
	)
}

// Abandoned reports a caller whose context ended before a shared request
// finished, with no cached value to fall back on.
func Abandoned(service, endpoint string, cause error) *AppError {
	return New(
		fmt.Errorf("%w: %w", ErrRequestFailed, cause),
		http.StatusGatewayTimeout,
		fmt.Sprintf("%s request to %s abandoned by caller", service, endpoint),
	)
}

// Aborted reports an attempt cancelled by the per-request timeout.
func Aborted(timeout time.Duration, err error) *AppError {
	return New(
		fmt.Errorf("%w: %w", ErrAbortedRequest, err),
		http.StatusGatewayTimeout,
		fmt.Sprintf("request aborted after %s", timeout),
	)
}

// UpstreamStatus reports a non-2xx provider response.
func UpstreamStatus(code int) *AppError {
	return New(ErrUpstreamStatus, http.StatusBadGateway, fmt.Sprintf("upstream status %d", code))
}

// LocationNotFound reports a geocoding lookup without a match.
func LocationNotFound(name string) *AppError {
	return New(ErrLocationNotFound, http.StatusNotFound, fmt.Sprintf("location %q not found", name))
}
