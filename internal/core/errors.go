// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Series validation errors
	ErrEmptyData   = &Error{Code: "EMPTY_DATA", Message: "no valid data points"}
	ErrInvalidData = &Error{Code: "INVALID_DATA", Message: "data could not be coerced to numeric"}
	ErrInvalidType = &Error{Code: "INVALID_TYPE", Message: "unsupported input shape"}

	// Record schema errors
	ErrSchema = &Error{Code: "SCHEMA_INVALID", Message: "record missing required field"}

	// Loader errors
	ErrInvalidRange    = &Error{Code: "INVALID_RANGE", Message: "start date after end date"}
	ErrDataUnavailable = &Error{Code: "DATA_UNAVAILABLE", Message: "all price providers exhausted"}

	// Provider errors
	ErrProviderFailed = &Error{Code: "PROVIDER_FAILED", Message: "provider fetch failed"}
	ErrNoData         = &Error{Code: "NO_DATA", Message: "no data available"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

// Transient wraps an error the provider retrier may retry.
type Transient struct {
	Err error
}

func (t *Transient) Error() string {
	return "transient: " + t.Err.Error()
}

func (t *Transient) Unwrap() error {
	return t.Err
}

// MarkTransient wraps err so IsTransient reports true. Nil stays nil.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &Transient{Err: err}
}
