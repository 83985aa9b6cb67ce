package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxCalculations is the default calculation budget of one pass.
const DefaultMaxCalculations = 10000

// QuotaEnforcer counts the calculations run by one pass and enforces a
// maximum.
//
// The processed set already bounds a pass to three calculations per unit;
// the budget guards against a corrupt project where a material fans out to
// an unexpectedly large part of the flowsheet.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
//
// Returns StepsExceededError if the quota is exceeded.
func (q *QuotaEnforcer) Check(passToken string) error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{
			PassToken: passToken,
			Steps:     q.current,
			Limit:     q.maxSteps,
		}
	}
	return nil
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}

// StepsExceededError is returned when a pass exceeds its calculation budget.
type StepsExceededError struct {
	PassToken string
	Steps     int
	Limit     int
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("pass %s exceeded calculation budget: %d calculations > %d limit",
		e.PassToken, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
