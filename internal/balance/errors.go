package balance

import (
	"errors"
	"fmt"
)

// CalcType names a calculator. The values double as the calc_type of
// calculation_completed events.
type CalcType string

const (
	CalcMass  CalcType = "material_balance"
	CalcHeat  CalcType = "heat_balance"
	CalcWater CalcType = "water_balance"
)

// ErrorCode categorizes calculator errors.
type ErrorCode string

const (
	// ErrCodeNoStreams indicates the unit has no streams to balance.
	ErrCodeNoStreams ErrorCode = "NO_STREAMS"

	// ErrCodeUnitNotFound indicates the target unit does not exist.
	ErrCodeUnitNotFound ErrorCode = "UNIT_NOT_FOUND"

	// ErrCodeStoreRead indicates the store could not be read.
	ErrCodeStoreRead ErrorCode = "STORE_READ"

	// ErrCodeStoreWrite indicates the balance record could not be written.
	ErrCodeStoreWrite ErrorCode = "STORE_WRITE"

	// ErrCodeInternal indicates an unexpected failure inside a calculation.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// CalcError describes why a calculator run did not produce a record.
type CalcError struct {
	Code    ErrorCode
	Calc    CalcType
	UnitID  string
	Message string
	Err     error
}

func (e *CalcError) Error() string {
	msg := fmt.Sprintf("%s: %s unit=%s: %s", e.Code, e.Calc, e.UnitID, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CalcError) Unwrap() error { return e.Err }

// IsNoOp reports whether err marks a run whose preconditions were not met.
// Uses errors.As to handle wrapped errors.
func IsNoOp(err error) bool {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeNoStreams || ce.Code == ErrCodeUnitNotFound
	}
	return false
}

// CodeOf returns the code of a CalcError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func calcError(code ErrorCode, calc CalcType, unitID, message string, err error) *CalcError {
	return &CalcError{Code: code, Calc: calc, UnitID: unitID, Message: message, Err: err}
}
