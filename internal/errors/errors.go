// Package errors provides a lightweight structured error type (LaunchError)
// for category-based classification and exit code mapping in the CLI.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a launcher error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Child process outcomes
	CategoryBuild ErrorCategory = "build"
	CategoryServe ErrorCategory = "serve"
	CategorySpawn ErrorCategory = "spawn"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// NoExitCode marks a LaunchError that did not originate from a child exit.
const NoExitCode = -1

// LaunchError is a structured error with category, severity, and context.
// ExitCode is set when the error mirrors a child process outcome.
type LaunchError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	ExitCode int           `json:"exit_code"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for LaunchError
type ContextFields map[string]any

// Error implements the error interface
func (e *LaunchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *LaunchError) WithContext(key string, value any) *LaunchError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// HasExitCode reports whether the error carries a child exit code.
func (e *LaunchError) HasExitCode() bool {
	return e.ExitCode != NoExitCode
}

// New creates a new LaunchError
func New(category ErrorCategory, severity ErrorSeverity, message string) *LaunchError {
	return &LaunchError{
		Category: category,
		Severity: severity,
		Message:  message,
		ExitCode: NoExitCode,
	}
}

// Wrap creates a new LaunchError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *LaunchError {
	return &LaunchError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
		ExitCode: NoExitCode,
	}
}

// As extracts a *LaunchError from err's chain.
func As(err error) (*LaunchError, bool) {
	var le *LaunchError
	if stdErrors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if le, ok := As(err); ok {
		return le.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a LaunchError
func GetCategory(err error) ErrorCategory {
	if le, ok := As(err); ok {
		return le.Category
	}
	return CategoryInternal
}
