package balance

import "github.com/virmuran/ProcessDesignPro/internal/model"

// OutcomeKind distinguishes the three ways a calculator run can end.
type OutcomeKind string

const (
	Computed OutcomeKind = "computed"
	Skipped  OutcomeKind = "skipped"
	Failed   OutcomeKind = "failed"
)

// Outcome is the result of one calculator run for one unit.
type Outcome struct {
	Calc   CalcType
	UnitID string
	Kind   OutcomeKind

	// Status is the balance_status written by a computed run.
	Status model.Status

	// Result is *model.MassResult, *model.HeatResult or model.WaterBalance
	// for computed runs, nil otherwise.
	Result any

	// Err is a *CalcError for skipped and failed runs.
	Err error
}

// Computed reports whether the run wrote a record.
func (o Outcome) Computed() bool { return o.Kind == Computed }

// Skipped reports whether the run was a no-op.
func (o Outcome) Skipped() bool { return o.Kind == Skipped }

// Failed reports whether the run aborted on an error.
func (o Outcome) Failed() bool { return o.Kind == Failed }

func computed(calc CalcType, unitID string, status model.Status, result any) Outcome {
	return Outcome{Calc: calc, UnitID: unitID, Kind: Computed, Status: status, Result: result}
}

func skipped(calc CalcType, unitID string, code ErrorCode, message string) Outcome {
	return Outcome{
		Calc:   calc,
		UnitID: unitID,
		Kind:   Skipped,
		Err:    calcError(code, calc, unitID, message, nil),
	}
}

func failed(calc CalcType, unitID string, code ErrorCode, message string, err error) Outcome {
	return Outcome{
		Calc:   calc,
		UnitID: unitID,
		Kind:   Failed,
		Err:    calcError(code, calc, unitID, message, err),
	}
}
