package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a shreddit error code.
type ErrorCode string

const (
	ErrInvalidConfig  ErrorCode = "INVALID_CONFIG"  // 400
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrAuthFailed     ErrorCode = "AUTH_FAILED"     // 401
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrRedditAPI      ErrorCode = "REDDIT_API"      // 502
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// ShredditError represents a structured error with code, status, and details.
type ShredditError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ShredditError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidConfig creates a 400 error for an unusable credentials file.
func NewInvalidConfig(path, msg string) *ShredditError {
	return &ShredditError{
		Code:    ErrInvalidConfig,
		Status:  400,
		Message: fmt.Sprintf("%s: %s", path, msg),
		Details: map[string]any{"path": path},
	}
}

// NewInvalidRequest creates a 400 error for invalid parameters.
func NewInvalidRequest(msg string) *ShredditError {
	return &ShredditError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewAuthFailed creates a 401 error when Reddit rejects the credentials.
func NewAuthFailed(reason string) *ShredditError {
	return &ShredditError{
		Code:    ErrAuthFailed,
		Status:  401,
		Message: fmt.Sprintf("reddit login failed: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

// NewNotFound creates a 404 error for a missing ledger run.
func NewNotFound(identifier string) *ShredditError {
	return &ShredditError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("run not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewRedditAPI creates a 502 error for a non-2xx Reddit response.
func NewRedditAPI(method, path string, status int, body string) *ShredditError {
	return &ShredditError{
		Code:    ErrRedditAPI,
		Status:  502,
		Message: fmt.Sprintf("%s %s returned %d", method, path, status),
		Details: map[string]any{"method": method, "path": path, "status": status, "body": body},
	}
}

// NewCancelled creates an error for an operation stopped by its context.
func NewCancelled(operation string) *ShredditError {
	return &ShredditError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ShredditError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ShredditError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err, or any error it wraps, is a ShredditError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *ShredditError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
