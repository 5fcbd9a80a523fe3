package errors

import (
	"errors"
	"fmt"
)

// Common error types for the gateway
var (
	// Configuration errors
	ErrConfiguration = errors.New("configuration error")

	// Authentication flow errors
	ErrInvalidState        = errors.New("invalid OAuth state")
	ErrTokenExchangeFailed = errors.New("failed to exchange code for token")
	ErrInvalidCredentials  = errors.New("invalid API token credentials")

	// Session errors
	ErrAuthenticationRequired  = errors.New("authentication required")
	ErrSessionNotFound         = errors.New("invalid session")
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	// General errors
	ErrNotFound            = errors.New("not found")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// HTTPError carries the status and machine code an error should be reported with.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
	Wrapped    error
}

func (e *HTTPError) Error() string {
	if e.Wrapped != nil {
		return e.Message + ": " + e.Wrapped.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Wrapped
}

// NewHTTPError builds an HTTPError without a wrapped cause.
func NewHTTPError(statusCode int, code, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Code: code, Message: message}
}
