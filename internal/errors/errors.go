// Package errors defines the structured error taxonomy used by brew-file.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a stable error category.
type ErrorCode string

const (
	// ErrUnknown is returned by GetErrorCode for foreign errors.
	ErrUnknown ErrorCode = "UNKNOWN"
	// ErrInvalidInput is a malformed flag, dialect, or argument.
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrConfigLoad is a failure loading settings.
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"

	// ErrMissingFile means the manifest does not exist. Callers treat it as empty input.
	ErrMissingFile ErrorCode = "MISSING_FILE"
	// ErrCommandFailed is a non-zero exit from an external command.
	ErrCommandFailed ErrorCode = "COMMAND_FAILED"
	// ErrAmbiguousMatch marks attribution heuristics with several candidates.
	// It is informational and never returned from public operations.
	ErrAmbiguousMatch ErrorCode = "AMBIGUOUS_MATCH"
	// ErrDeclarationConflict is a duplicate declaration or removal of an undeclared item.
	ErrDeclarationConflict ErrorCode = "DECLARATION_CONFLICT"
	// ErrIncludeCycle is a file directive that includes an already visited manifest.
	ErrIncludeCycle ErrorCode = "INCLUDE_CYCLE"
)

// BrewfileError represents a structured error with code and details.
type BrewfileError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface.
func (e *BrewfileError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface.
func (e *BrewfileError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target carries the same code.
func (e *BrewfileError) Is(target error) bool {
	var targetErr *BrewfileError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BrewfileError with the given code and message.
func New(code ErrorCode, message string) *BrewfileError {
	return &BrewfileError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new BrewfileError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *BrewfileError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *BrewfileError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BrewfileError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error.
func (e *BrewfileError) WithDetail(key string, value interface{}) *BrewfileError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var bfErr *BrewfileError
	if errors.As(err, &bfErr) {
		return bfErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	var bfErr *BrewfileError
	if errors.As(err, &bfErr) {
		return bfErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil.
func GetErrorDetails(err error) map[string]interface{} {
	var bfErr *BrewfileError
	if errors.As(err, &bfErr) {
		return bfErr.Details
	}
	return nil
}
