package model

import (
	"errors"
	"fmt"
)

// ValidationError reports an entity that must not be persisted.
type ValidationError struct {
	Kind    string
	ID      string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid %s %q: %s: %s", e.Kind, e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s: %s", e.Kind, e.Field, e.Message)
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(kind, id, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, ID: id, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound is returned by lookups of records that do not exist.
var ErrNotFound = errors.New("record not found")
