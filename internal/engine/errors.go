package engine

import (
	"errors"
	"fmt"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// SyncError represents a failure detected during a propagation pass.
//
// SyncError includes structured fields for diagnostics.
type SyncError struct {
	// Code identifies the error category.
	Code SyncErrorCode

	// Message is a human-readable description.
	Message string

	// PassToken identifies the affected pass.
	PassToken string

	// Source is the kind of the changed entity.
	Source model.Kind

	// Target is the handler target, when the failure belongs to one.
	Target Target

	// Err is the underlying cause.
	Err error
}

// SyncErrorCode categorizes propagation errors.
type SyncErrorCode string

const (
	// ErrCodeHandlerFailed indicates a target handler returned an error or
	// one of its calculations failed.
	ErrCodeHandlerFailed SyncErrorCode = "HANDLER_FAILED"

	// ErrCodeUnknownEntity indicates the change names an entity that does
	// not exist or carries no usable payload.
	ErrCodeUnknownEntity SyncErrorCode = "UNKNOWN_ENTITY"
)

// Error implements the error interface.
func (e *SyncError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.PassToken != "" && e.Target != 0 {
		msg = fmt.Sprintf("%s (pass=%s, target=%s)", msg, e.PassToken, e.Target)
	} else if e.PassToken != "" {
		msg = fmt.Sprintf("%s (pass=%s)", msg, e.PassToken)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SyncError) Unwrap() error { return e.Err }

// IsHandlerError returns true if the error is a handler failure.
// Uses errors.As to handle wrapped errors.
func IsHandlerError(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code == ErrCodeHandlerFailed
	}
	return false
}

// IsUnknownEntity returns true if the error reports a missing entity.
// Uses errors.As to handle wrapped errors.
func IsUnknownEntity(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code == ErrCodeUnknownEntity
	}
	return false
}

// NewHandlerError creates a SyncError for a failed target handler.
func NewHandlerError(passToken string, source model.Kind, target Target, err error) *SyncError {
	return &SyncError{
		Code:      ErrCodeHandlerFailed,
		Message:   fmt.Sprintf("%s -> %s failed", source, target),
		PassToken: passToken,
		Source:    source,
		Target:    target,
		Err:       err,
	}
}

// NewUnknownEntityError creates a SyncError for a change naming a missing entity.
func NewUnknownEntityError(source model.Kind, id string, err error) *SyncError {
	return &SyncError{
		Code:    ErrCodeUnknownEntity,
		Message: fmt.Sprintf("%s %q", source, id),
		Source:  source,
		Err:     err,
	}
}
