// Package validation checks user-submitted fields and reports every failure
// as a field error instead of returning early.
package validation

import (
	"strings"

	"foodfeed/internal/models"
)

// FieldError is a constraint violation on a single form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects field errors. The zero value is a passing result.
type Result struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// Valid reports whether no field errors were recorded.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Add records a field error.
func (r *Result) Add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// Merge returns a result containing the errors of both.
func (r Result) Merge(other Result) Result {
	out := Result{Errors: make([]FieldError, 0, len(r.Errors)+len(other.Errors))}
	out.Errors = append(out.Errors, r.Errors...)
	out.Errors = append(out.Errors, other.Errors...)
	return out
}

// Field returns the messages recorded against one field.
func (r Result) Field(name string) []string {
	var msgs []string
	for _, fe := range r.Errors {
		if fe.Field == name {
			msgs = append(msgs, fe.Message)
		}
	}
	return msgs
}

// Err converts a failing result into a validation AppError.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	parts := make([]string, 0, len(r.Errors))
	for _, fe := range r.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return models.NewValidationError(strings.Join(parts, "; "))
}
