// Package validation provides field-level input checks that are independent
// of any storage or transport. Every check appends to an Error so a caller
// reports all violations at once.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error collects FieldErrors. A nil *Error or one with no Fields means valid.
type Error struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Addf records a violation on field.
func (e *Error) Addf(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Merge appends all violations of other, prefixing each field with prefix.
func (e *Error) Merge(prefix string, other *Error) {
	if other == nil {
		return
	}
	for _, f := range other.Fields {
		name := f.Field
		if prefix != "" {
			name = prefix + "." + name
		}
		e.Fields = append(e.Fields, FieldError{Field: name, Message: f.Message})
	}
}

// Err returns e as an error when it holds violations and nil otherwise.
// Callers must return Err() rather than e itself to avoid a typed-nil error.
func (e *Error) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Length checks that the trimmed value has between min and max runes.
func (e *Error) Length(field, value string, min, max int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	switch {
	case n < min && min == 1:
		e.Addf(field, "is required")
	case n < min:
		e.Addf(field, "must be at least %d characters", min)
	case n > max:
		e.Addf(field, "must be at most %d characters", max)
	}
}

// Range checks min <= value <= max.
func (e *Error) Range(field string, value, min, max int) {
	if value < min || value > max {
		e.Addf(field, "must be between %d and %d, got %d", min, max, value)
	}
}

// NonNegative checks value >= 0.
func (e *Error) NonNegative(field string, value int) {
	if value < 0 {
		e.Addf(field, "must not be negative, got %d", value)
	}
}

// OneOf checks that value is in allowed.
func (e *Error) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	e.Addf(field, "must be one of [%s], got %q", strings.Join(allowed, ", "), value)
}
