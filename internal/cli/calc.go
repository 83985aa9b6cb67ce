package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
)

// CalcOptions holds flags for the calc command.
type CalcOptions struct {
	*RootOptions
	Type string // calculator to run; all when empty
}

var allCalcs = []balance.CalcType{balance.CalcMass, balance.CalcHeat, balance.CalcWater}

// parseCalcTypes accepts a calculator name, its short form or "all".
func parseCalcTypes(s string) ([]balance.CalcType, error) {
	switch s {
	case "", "all":
		return allCalcs, nil
	case "mass", string(balance.CalcMass):
		return []balance.CalcType{balance.CalcMass}, nil
	case "heat", string(balance.CalcHeat):
		return []balance.CalcType{balance.CalcHeat}, nil
	case "water", string(balance.CalcWater):
		return []balance.CalcType{balance.CalcWater}, nil
	}
	return nil, fmt.Errorf("unknown calculation type %q: must be mass, heat, water or all", s)
}

// NewCalcCommand creates the calc command.
func NewCalcCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CalcOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "calc [unit-id...]",
		Short: "Recalculate unit balances",
		Long: `Recalculate the balances of the named units.

Without arguments or --type every calculator runs on every unit in one
propagation pass. Skipped runs (a unit without streams, a stream without
composition) are reported but are not failures.

Exit codes:
  0 - Every calculation ran or was skipped
  1 - One or more calculations failed
  2 - Command error

Examples:
  procdesign calc
  procdesign calc U1 U2 --type heat
  procdesign calc --type water --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "calculation type (mass|heat|water|all)")

	return cmd
}

func runCalc(opts *CalcOptions, unitIDs []string, cmd *cobra.Command) error {
	calcs, err := parseCalcTypes(opts.Type)
	if err != nil {
		return fail(newFormatter(opts.RootOptions, cmd), ExitCommandError, ErrCodeCalc, err.Error(), nil)
	}

	return withSession(opts.RootOptions, cmd, func(ctx context.Context, s *session, f *OutputFormatter) error {
		var summary PassSummary
		if len(unitIDs) == 0 && opts.Type == "" {
			report, err := s.engine.CalculateAll(ctx)
			summary = summarizePass(report)
			if err != nil && len(report.Outcomes) == 0 {
				return fail(f, ExitFailure, ErrCodeCalc, err.Error(), nil)
			}
		} else {
			summary, err = calculateUnits(ctx, s, unitIDs, calcs)
			if err != nil {
				return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
			}
		}

		if err := f.SuccessPass(summary.PassToken, summary, summary.writeText); err != nil {
			return err
		}
		if summary.Failed() {
			return NewExitError(ExitFailure, "one or more calculations failed")
		}
		return nil
	})
}

// calculateUnits runs calcs on each unit outside any propagation pass.
// No unit ids means every stored unit.
func calculateUnits(ctx context.Context, s *session, unitIDs []string, calcs []balance.CalcType) (PassSummary, error) {
	if len(unitIDs) == 0 {
		units, err := s.store.ListUnits(ctx)
		if err != nil {
			return PassSummary{}, err
		}
		for _, u := range units {
			unitIDs = append(unitIDs, u.ID)
		}
	}

	var outcomes []balance.Outcome
	for _, id := range unitIDs {
		for _, calc := range calcs {
			outcomes = append(outcomes, s.calc.Run(ctx, calc, id))
		}
	}
	return PassSummary{Dispatched: true, Outcomes: summarizeOutcomes(outcomes)}, nil
}
