// Package errors provides structured error types for the fluxplot application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Balance-plot construction failures carry their own codes so callers can
// distinguish recoverable conditions (EMPTY_BUS: skip the bus, EMPTY_WINDOW:
// retry with a wider window) from hard failures (SELF_LOOP: corrupt input,
// AMBIGUOUS_TICKS: caller misconfiguration).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyBus, "no flows reference bus %q", bus)
//	if errors.Is(err, errors.ErrCodeEmptyBus) {
//	    // Skip this bus and continue with the next one
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidScenario, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Balance-plot construction errors
	ErrCodeEmptyBus       Code = "EMPTY_BUS"
	ErrCodeSelfLoop       Code = "SELF_LOOP"
	ErrCodeEmptyWindow    Code = "EMPTY_WINDOW"
	ErrCodeAmbiguousTicks Code = "AMBIGUOUS_TICKS"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFlow     Code = "INVALID_FLOW"
	ErrCodeInvalidScenario Code = "INVALID_SCENARIO"
	ErrCodeInvalidLabel    Code = "INVALID_LABEL"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Pipeline stage errors
	ErrCodeDispatch Code = "DISPATCH_ERROR"
	ErrCodeRender   Code = "RENDER_ERROR"
	ErrCodeCache    Code = "CACHE_ERROR"
	ErrCodeArchive  Code = "ARCHIVE_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ShortfallError reports an unmet balance during dispatch of a bus that has
// no shortage source configured.
type ShortfallError struct {
	Bus     string  // bus whose balance could not close
	Period  int     // zero-based period index
	Missing float64 // unmet quantity in the bus unit
}

// Error implements the error interface.
func (e *ShortfallError) Error() string {
	return fmt.Sprintf("dispatch shortfall on bus %q at period %d: %.3f unmet", e.Bus, e.Period, e.Missing)
}

// Code returns the error code for this error type.
func (e *ShortfallError) Code() Code {
	return ErrCodeDispatch
}
