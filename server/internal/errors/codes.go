package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure at an operation boundary. Every error that
// crosses a service boundary carries one of these codes so the API layer can
// map it to a status and a displayable message.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates the referenced agent, session, or custom
	// component no longer exists.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeServiceUnavailable indicates a backing service is unreachable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeLLMUnavailable indicates the completion provider failed.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodePartialPersistence indicates state was updated in memory but the
	// backing write failed. The in-memory state is intentionally left as-is.
	ErrCodePartialPersistence ErrorCode = "PARTIAL_PERSISTENCE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// WorkbenchError is a structured error for workbench operations.
type WorkbenchError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *WorkbenchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *WorkbenchError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *WorkbenchError) GetCode() ErrorCode {
	return e.Code
}

// CodeOf extracts the error code from err, or SERVICE_UNAVAILABLE when err
// carries no code.
func CodeOf(err error) ErrorCode {
	var we *WorkbenchError
	if errors.As(err, &we) {
		return we.Code
	}
	return ErrCodeServiceUnavailable
}

// Convenience constructors for common error types.

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string, cause error) *WorkbenchError {
	return &WorkbenchError{Code: ErrCodeUnauthorized, Message: msg, Cause: cause}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string, cause error) *WorkbenchError {
	return &WorkbenchError{Code: ErrCodeRateLimitExceeded, Message: msg, Cause: cause}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string, cause error) *WorkbenchError {
	return &WorkbenchError{Code: ErrCodeInvalidArgument, Message: msg, Cause: cause}
}

// NotFound creates a not found error.
func NotFound(msg string, cause error) *WorkbenchError {
	return &WorkbenchError{Code: ErrCodeNotFound, Message: msg, Cause: cause}
}

// ServiceUnavailable creates a service unavailable error.
func ServiceUnavailable(msg string, cause error) *WorkbenchError {
	return &WorkbenchError{Code: ErrCodeServiceUnavailable, Message: msg, Cause: cause}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(msg string, cause error) *WorkbenchError {
	return &WorkbenchError{Code: ErrCodeLLMUnavailable, Message: msg, Cause: cause}
}

// PartialPersistence creates a partial persistence error.
func PartialPersistence(msg string, cause error) *WorkbenchError {
	return &WorkbenchError{Code: ErrCodePartialPersistence, Message: msg, Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string, cause error) *WorkbenchError {
	return &WorkbenchError{Code: ErrCodeTimeout, Message: msg, Cause: cause}
}
