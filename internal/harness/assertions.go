package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, event.Line)
		}
	}

	return buf.String()
}

// BalanceReader reads stored balances and the change log.
// *store.Store implements it.
type BalanceReader interface {
	GetMaterialBalance(ctx context.Context, unitID string) (model.MaterialBalance, error)
	GetHeatBalance(ctx context.Context, unitID string) (model.HeatBalance, error)
	ListChanges(ctx context.Context, module model.Kind, entityID string) ([]store.ChangeRecord, error)
}

var _ BalanceReader = (*store.Store)(nil)

// assertTraceContains checks that some trace line equals the expected one.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Line == a.Line {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("line %q", a.Line),
		Actual:   "not found",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the lines appear in order. Other lines may
// come in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Lines) && event.Line == a.Lines[next] {
			next++
		}
	}
	if next == len(a.Lines) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: strings.Join(a.Lines, " -> "),
		Actual:   fmt.Sprintf("missing or out of order: %q", a.Lines[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks how many lines start with the prefix.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, event := range trace {
		if strings.HasPrefix(event.Line, a.Prefix) {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d lines starting with %q", a.Count, a.Prefix),
		Actual:   fmt.Sprintf("%d", n),
		Trace:    trace,
	}
}

// assertBalanceStatus checks the stored status of one balance.
func assertBalanceStatus(ctx context.Context, r BalanceReader, a Assertion) error {
	var (
		status model.Status
		err    error
	)
	switch a.Calc {
	case balance.CalcMass:
		var b model.MaterialBalance
		b, err = r.GetMaterialBalance(ctx, a.Unit)
		status = b.Status
	case balance.CalcHeat:
		var b model.HeatBalance
		b, err = r.GetHeatBalance(ctx, a.Unit)
		status = b.Status
	default:
		return fmt.Errorf("balance_status: unsupported calc %q", a.Calc)
	}

	actual := string(status)
	switch {
	case errors.Is(err, model.ErrNotFound):
		actual = "no balance stored"
	case err != nil:
		return fmt.Errorf("balance_status: %w", err)
	}
	if err == nil && status == a.Status {
		return nil
	}
	return &AssertionError{
		Type:     AssertBalanceStatus,
		Expected: fmt.Sprintf("%s of %s is %s", a.Calc, a.Unit, a.Status),
		Actual:   actual,
	}
}

// assertChangesRecorded counts change log rows.
func assertChangesRecorded(ctx context.Context, r BalanceReader, a Assertion) error {
	rows, err := r.ListChanges(ctx, "", "")
	if err != nil {
		return fmt.Errorf("changes_recorded: %w", err)
	}
	n := 0
	for _, row := range rows {
		if a.Source == "" || row.Module == a.Source {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	what := "changes"
	if a.Source != "" {
		what = string(a.Source) + " changes"
	}
	return &AssertionError{
		Type:     AssertChangesRecorded,
		Expected: fmt.Sprintf("%d %s", a.Count, what),
		Actual:   fmt.Sprintf("%d", n),
	}
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(ctx context.Context, result *Result, assertions []Assertion, r BalanceReader) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertBalanceStatus:
			err = assertBalanceStatus(ctx, r, a)
		case AssertChangesRecorded:
			err = assertChangesRecorded(ctx, r, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
