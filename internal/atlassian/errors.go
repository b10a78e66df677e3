// Package atlassian provides the pieces shared by every backend adapter:
// the closed error taxonomy, the response envelope, and a small HTTP
// client for the REST APIs that have no dedicated Go client library.
package atlassian

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories an adapter can report.
// Every failure observed by an adapter is classified into exactly one kind
// before it crosses the adapter boundary.
type ErrorKind string

const (
	// ErrConfiguration indicates missing or invalid local configuration,
	// detected before any network call is attempted.
	ErrConfiguration ErrorKind = "ConfigurationError"
	// ErrAuthentication indicates the backend rejected the credentials.
	ErrAuthentication ErrorKind = "AuthenticationError"
	// ErrValidation indicates malformed or missing caller input, or
	// parameters the backend rejected.
	ErrValidation ErrorKind = "ValidationError"
	// ErrNotFound indicates the target resource does not exist.
	ErrNotFound ErrorKind = "NotFoundError"
	// ErrAPI indicates a backend-side failure (5xx or malformed response).
	ErrAPI ErrorKind = "APIError"
	// ErrNetwork indicates a transport failure where no response was
	// obtained. Callers may safely retry these.
	ErrNetwork ErrorKind = "NetworkError"
)

// Error is the only error type adapters return. The Kind drives the
// error_type field of the error envelope.
type Error struct {
	Kind    ErrorKind
	Message string
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates an Error of the given kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Configurationf creates a ConfigurationError.
func Configurationf(format string, args ...any) *Error {
	return NewError(ErrConfiguration, format, args...)
}

// Authenticationf creates an AuthenticationError.
func Authenticationf(format string, args ...any) *Error {
	return NewError(ErrAuthentication, format, args...)
}

// Validationf creates a ValidationError.
func Validationf(format string, args ...any) *Error {
	return NewError(ErrValidation, format, args...)
}

// NotFoundf creates a NotFoundError.
func NotFoundf(format string, args ...any) *Error {
	return NewError(ErrNotFound, format, args...)
}

// APIf creates an APIError.
func APIf(format string, args ...any) *Error {
	return NewError(ErrAPI, format, args...)
}

// Networkf creates a NetworkError.
func Networkf(format string, args ...any) *Error {
	return NewError(ErrNetwork, format, args...)
}

// AsError returns err as an *Error, classifying anything that is not
// already one as an APIError. Adapters use this as the final safety net so
// no foreign error shape ever reaches a caller.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return APIf("Unexpected error: %v", err)
}

// ClassifyStatus maps an HTTP status code to an error of the appropriate
// kind. The message should already describe the failed operation; 404s are
// expected to name the requested identifier.
func ClassifyStatus(status int, message string) *Error {
	switch {
	case status == 401:
		return Authenticationf("Authentication failed: %s", message)
	case status == 403:
		return Authenticationf("Access forbidden: %s", message)
	case status == 404:
		return NotFoundf("Resource not found: %s", message)
	case status >= 400 && status < 500:
		return Validationf("Invalid request: %s", message)
	default:
		return APIf("API error (%d): %s", status, message)
	}
}
