// Package errors provides a lightweight structured error type (TaggerError)
// for category-based classification of configuration, pattern and version failures.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a TaggerError for classification
type ErrorCategory string

const (
	// Configuration document errors
	CategoryConfigLoad       ErrorCategory = "config_load"
	CategoryConfigValidation ErrorCategory = "config_validation"
	CategoryConfigNotFound   ErrorCategory = "config_not_found"
	CategoryCircular         ErrorCategory = "circular_inheritance"

	// Matching errors
	CategoryInvalidPattern ErrorCategory = "invalid_pattern"
	CategoryVersionParse   ErrorCategory = "version_parse"

	// Everything else
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the current load
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// TaggerError is a structured error with category, severity and context
type TaggerError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TaggerError
type ContextFields map[string]any

// Error implements the error interface
func (e *TaggerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *TaggerError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TaggerError) WithContext(key string, value any) *TaggerError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new TaggerError
func New(category ErrorCategory, severity ErrorSeverity, message string) *TaggerError {
	return &TaggerError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new TaggerError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TaggerError {
	return &TaggerError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory reports whether any TaggerError in err's chain has the given category.
func IsCategory(err error, category ErrorCategory) bool {
	for err != nil {
		var te *TaggerError
		if !stdErrors.As(err, &te) {
			return false
		}
		if te.Category == category {
			return true
		}
		err = te.Cause
	}
	return false
}

// GetCategory extracts the category of the outermost TaggerError, or CategoryInternal.
func GetCategory(err error) ErrorCategory {
	var te *TaggerError
	if stdErrors.As(err, &te) {
		return te.Category
	}
	return CategoryInternal
}
