package harness

import (
	"github.com/virmuran/ProcessDesignPro/internal/notify"
)

// TraceEvent is one notification emitted while a scenario ran.
type TraceEvent struct {
	Seq  int              `json:"seq"`
	Type notify.EventType `json:"type"`
	Line string           `json:"line"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every change applied and every assertion held.
	Pass bool `json:"pass"`

	// Trace holds the events of the changes, in emission order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvents appends events to the trace, numbering them after the events
// already there.
func (r *Result) AddEvents(events []notify.Event) {
	for _, e := range events {
		r.Trace = append(r.Trace, TraceEvent{
			Seq:  len(r.Trace) + 1,
			Type: e.Type(),
			Line: e.Line(),
		})
	}
}

// Lines returns the trace lines in order.
func (r *Result) Lines() []string {
	lines := make([]string, len(r.Trace))
	for i, e := range r.Trace {
		lines[i] = e.Line
	}
	return lines
}
