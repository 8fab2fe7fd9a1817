// Package errs provides the structured BuildError used by every build stage
// and the Report that collects per-document failures during rendering.
package errs

import (
	"errors"
	"fmt"
)

// Category classifies what went wrong.
type Category string

const (
	CategoryConflict        Category = "structural_conflict"
	CategoryMissingField    Category = "missing_field"
	CategoryBrokenReference Category = "broken_reference"
	CategoryMalformedMarkup Category = "malformed_markup"
	CategoryConfig          Category = "config"
	CategoryInternal        Category = "internal"
)

// Severity indicates whether the build can continue.
type Severity string

const (
	SeverityFatal   Severity = "fatal"   // Fails the build
	SeverityError   Severity = "error"   // Document is degraded, build continues
	SeverityWarning Severity = "warning" // Reported only
)

// Fields carries structured context for a BuildError.
type Fields map[string]any

// BuildError is a structured error with category, severity and the document it came from.
type BuildError struct {
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
	Cause    error    `json:"cause,omitempty"`
	Context  Fields   `json:"context,omitempty"`
}

func (e *BuildError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, msg, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, msg)
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(Fields)
	}
	e.Context[key] = value
	return e
}

func (e *BuildError) Fatal() bool {
	return e.Severity == SeverityFatal
}

// New creates a BuildError for the document at path.
func New(category Category, severity Severity, path, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Path:     path,
		Message:  message,
	}
}

// Wrap creates a BuildError that wraps an existing error.
func Wrap(err error, category Category, severity Severity, path, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Path:     path,
		Message:  message,
		Cause:    err,
	}
}

// As extracts a *BuildError from anywhere in err's chain.
func As(err error) (*BuildError, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// All flattens err, including errors.Join trees, into its BuildErrors.
// Foreign errors become fatal internal errors.
func All(err error) []*BuildError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*BuildError
		for _, e := range joined.Unwrap() {
			out = append(out, All(e)...)
		}
		return out
	}
	if be, ok := As(err); ok {
		return []*BuildError{be}
	}
	return []*BuildError{InternalError("unexpected failure", err)}
}

// IsCategory checks if err, or any error joined into it, belongs to category
func IsCategory(err error, category Category) bool {
	for _, be := range All(err) {
		if be.Category == category {
			return true
		}
	}
	return false
}

// GetCategory returns the category of err, or CategoryInternal for foreign errors.
func GetCategory(err error) Category {
	if be, ok := As(err); ok {
		return be.Category
	}
	return CategoryInternal
}

// IsFatal reports whether err would fail a build. Foreign errors are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if be, ok := As(err); ok {
		return be.Fatal()
	}
	return true
}
