// Package errors provides a lightweight structured error type (BinderError)
// for category-based classification across the compilation pipeline and CLI.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of a bookbinder error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryTheme      ErrorCategory = "theme"

	// Build and processing errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// BinderError is a structured error with category, severity, and context
type BinderError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
	// Detail carries a longer machine-oriented blob (e.g. schema validator
	// output) that should not be folded into the one-line message.
	Detail string `json:"detail,omitempty"`
}

// ContextFields carries structured context for BinderError
type ContextFields map[string]any

// Error implements the error interface
func (e *BinderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BinderError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BinderError) WithContext(key string, value any) *BinderError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithDetail attaches a detailed diagnostic blob to the error.
func (e *BinderError) WithDetail(detail string) *BinderError {
	e.Detail = detail
	return e
}

// New creates a new BinderError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BinderError {
	return &BinderError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Newf creates a new BinderError with a formatted message
func Newf(category ErrorCategory, severity ErrorSeverity, format string, args ...any) *BinderError {
	return New(category, severity, fmt.Sprintf(format, args...))
}

// Wrap creates a new BinderError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BinderError {
	return &BinderError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// NewConfigError creates a fatal configuration error (bad theme reference,
// destination collision, pre-occupied generated target).
func NewConfigError(message string) *BinderError {
	return New(CategoryConfig, SeverityFatal, message)
}

// NewConfigErrorf creates a fatal configuration error with a formatted message.
func NewConfigErrorf(format string, args ...any) *BinderError {
	return Newf(CategoryConfig, SeverityFatal, format, args...)
}

// NewValidationError creates a fatal validation error.
func NewValidationError(message string) *BinderError {
	return New(CategoryValidation, SeverityFatal, message)
}

// AsBinderError extracts a *BinderError from an error chain.
func AsBinderError(err error) (*BinderError, bool) {
	var be *BinderError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsCategory reports whether err carries the given category.
func IsCategory(err error, category ErrorCategory) bool {
	if be, ok := AsBinderError(err); ok {
		return be.Category == category
	}
	return false
}
