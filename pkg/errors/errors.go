package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

const (
	// Generic errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Host API errors
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamRejected    ErrorCode = "UPSTREAM_REJECTED"
	ErrCodeProtocolViolation   ErrorCode = "PROTOCOL_VIOLATION"

	// Quick connect errors
	ErrCodeInvalidCode ErrorCode = "INVALID_CODE"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details, never rendered to callers
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an existing error with code and formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error is not a structured Error
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// GetDetails extracts the details from an error
// Returns nil if the error is not a structured Error
func GetDetails(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// GetMessage extracts the caller-facing message from an error
// Returns "" if the error is not a structured Error
func GetMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes.
// Every host API failure is reported as a server error.
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidCode:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeUpstreamUnavailable, ErrCodeUpstreamRejected, ErrCodeProtocolViolation:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Unauthorized creates an "unauthorized" error
func Unauthorized(message string) *Error {
	return New(ErrCodeUnauthorized, message)
}

// Forbidden creates a "forbidden" error
func Forbidden(message string) *Error {
	return New(ErrCodeForbidden, message)
}

// InvalidInput creates an "invalid input" error
func InvalidInput(field, reason string) *Error {
	return New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason))
}

// ProtocolViolation creates an error for a host response that succeeded but
// omitted a required field.
func ProtocolViolation(message string) *Error {
	return New(ErrCodeProtocolViolation, message)
}

// InternalWrap wraps an internal error
func InternalWrap(err error, message string) *Error {
	return Wrap(err, ErrCodeInternal, message)
}
