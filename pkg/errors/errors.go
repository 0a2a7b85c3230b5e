// Package errors provides structured error types for cargo-matrix.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and internal packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages with corrective hints
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes enumerate the tool's failure modes: configuration mistakes,
// manifest problems, package selection problems, and runner failures.
//
// # Usage
//
//	err := errors.New(errors.CodeBadPartition, "partition %d/%d out of range", m, n)
//	if errors.Is(err, errors.CodeBadPartition) {
//	    // handle
//	}
//
//	err := errors.Wrap(errors.CodeMalformedManifest, origErr, "parsing %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes, one per failure mode named in the error taxonomy.
const (
	CodeConfig                Code = "CONFIG_ERROR"
	CodeMalformedManifest     Code = "MALFORMED_MANIFEST"
	CodeUnresolvedInheritance Code = "UNRESOLVED_INHERITANCE"
	CodeUnknownFeature        Code = "UNKNOWN_FEATURE"
	CodeNoMatchingPackage     Code = "NO_MATCHING_PACKAGE"
	CodeBadPartition          Code = "BAD_PARTITION"
	CodeToolchainUnavailable  Code = "TOOLCHAIN_UNAVAILABLE"
	CodeMetadataFailure       Code = "METADATA_FAILURE"
	CodeIO                    Code = "IO_ERROR"
	CodeChildNonZero          Code = "CHILD_NON_ZERO"
	CodeCancelled             Code = "CANCELLED"
)

// Error is a structured error with a code, an optional corrective hint, and
// an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Hint    string // Suggested corrective flag or action, if any
	Cause   error  // Underlying error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s (hint: %s)", msg, e.Hint)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithHint attaches a corrective hint (e.g. a flag to pass) and returns e.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// Is reports whether err has the given error code.
// It compares the code of the first *Error found in the chain (via
// errors.As); an *Error further down the chain is not consulted.
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

// UserMessage returns a user-friendly message for the error, including its
// corrective hint when present. For non-*Error values it returns the plain
// error string.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Hint != "" {
			return fmt.Sprintf("%s (hint: %s)", e.Message, e.Hint)
		}
		return e.Message
	}
	return err.Error()
}
