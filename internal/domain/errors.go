// Package domain holds the closed value types and error taxonomy shared by every module.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a hard lookup misses (e.g. patching a summary that was never built).
var ErrNotFound = errors.New("not found")

// ValidationError describes one malformed input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects several field errors; the whole input is rejected.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error.
func (e *ValidationErrors) Add(field, format string, args ...interface{}) {
	*e = append(*e, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// OrNil returns nil when no errors were collected.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// RowError is a validation failure for one row of a batch.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// RowErrors aborts a batch: nothing from the batch is committed.
type RowErrors []RowError

func (e RowErrors) Error() string {
	return fmt.Sprintf("batch rejected: %d row error(s)", len(e))
}

// IsValidation reports whether err belongs to the validation family (400-class).
func IsValidation(err error) bool {
	var ve *ValidationError
	var ves ValidationErrors
	var re RowErrors
	return errors.As(err, &ve) || errors.As(err, &ves) || errors.As(err, &re)
}
