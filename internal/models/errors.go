package models

import "fmt"

// ValidationError represents malformed or structurally inconsistent input.
// Complies with §13 (Error Algebra) - explicit error classification
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// InsufficientDataError represents input that is structurally valid but
// statistically too small to analyze. Callers may respond by requesting
// more data rather than treating the request as malformed.
type InsufficientDataError struct {
	Required int
	Actual   int
	Subject  string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need at least %d points, got %d", e.Subject, e.Required, e.Actual)
}

// IsTransient returns true: the same request may succeed once more data exists
func (e *InsufficientDataError) IsTransient() bool {
	return true
}
