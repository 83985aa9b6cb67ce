package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/engine"
)

// withSession opens the project for the duration of fn. A project that
// cannot be opened is reported through the formatter as a command error.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, s *session, f *OutputFormatter) error) error {
	f := newFormatter(opts, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, cliErr := openSession(ctx, opts, f)
	if cliErr != nil {
		return fail(f, ExitCommandError, cliErr.Code, cliErr.Message, cliErr.Details)
	}
	defer s.Close()

	f.VerboseLog("Opened %s", s.cfg.Database.Path)
	return fn(ctx, s, f)
}

// fail reports an error through f and returns the matching exit error.
func fail(f *OutputFormatter, exitCode int, code, message string, details any) error {
	if err := f.Error(code, message, details); err != nil {
		return err
	}
	return NewExitError(exitCode, message)
}

// OutcomeSummary is one calculator run in command output.
type OutcomeSummary struct {
	Calc   balance.CalcType    `json:"calc"`
	Unit   string              `json:"unit"`
	Kind   balance.OutcomeKind `json:"kind"`
	Status string              `json:"status,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// PassSummary is a propagation pass in command output.
type PassSummary struct {
	PassToken  string           `json:"pass_token,omitempty"`
	Dispatched bool             `json:"dispatched"`
	Version    int64            `json:"version,omitempty"`
	Outcomes   []OutcomeSummary `json:"outcomes"`
	Errors     []string         `json:"errors,omitempty"`
}

func summarizeOutcomes(outcomes []balance.Outcome) []OutcomeSummary {
	out := make([]OutcomeSummary, 0, len(outcomes))
	for _, o := range outcomes {
		s := OutcomeSummary{Calc: o.Calc, Unit: o.UnitID, Kind: o.Kind, Status: string(o.Status)}
		if o.Err != nil {
			s.Error = o.Err.Error()
		}
		out = append(out, s)
	}
	return out
}

func summarizePass(r engine.Report) PassSummary {
	s := PassSummary{
		PassToken:  r.PassToken,
		Dispatched: r.Dispatched,
		Version:    r.Version,
		Outcomes:   summarizeOutcomes(r.Outcomes),
	}
	for _, t := range r.Targets {
		if t.Err != nil {
			s.Errors = append(s.Errors, fmt.Sprintf("%s: %v", t.Target, t.Err))
		}
	}
	return s
}

// Failed reports whether any calculation or target of the pass failed.
func (s PassSummary) Failed() bool {
	if len(s.Errors) > 0 {
		return true
	}
	for _, o := range s.Outcomes {
		if o.Kind == balance.Failed {
			return true
		}
	}
	return false
}

func writeOutcomes(w io.Writer, outcomes []OutcomeSummary) error {
	for _, o := range outcomes {
		var err error
		switch {
		case o.Error != "":
			_, err = fmt.Fprintf(w, "  %-16s %-10s %s: %s\n", o.Calc, o.Unit, o.Kind, o.Error)
		default:
			_, err = fmt.Fprintf(w, "  %-16s %-10s %s %s\n", o.Calc, o.Unit, o.Kind, o.Status)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s PassSummary) writeText(w io.Writer) error {
	if s.PassToken != "" {
		if _, err := fmt.Fprintf(w, "Pass %s\n", s.PassToken); err != nil {
			return err
		}
	}
	if !s.Dispatched {
		_, err := fmt.Fprintln(w, "  no rule for this change")
		return err
	}
	if err := writeOutcomes(w, s.Outcomes); err != nil {
		return err
	}
	for _, e := range s.Errors {
		if _, err := fmt.Fprintf(w, "  error: %s\n", e); err != nil {
			return err
		}
	}
	return nil
}
