package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/report"
)

// PinchOptions holds flags for the pinch command.
type PinchOptions struct {
	*RootOptions
	DeltaTMin float64 // overrides pinch.delta_t_min when > 0
}

// PinchOutput is the output of the pinch command.
type PinchOutput struct {
	Pinch     balance.PinchResult   `json:"pinch"`
	Network   balance.Network       `json:"network"`
	Economics *balance.Optimization `json:"economics,omitempty"`
}

// NewPinchCommand creates the pinch command.
func NewPinchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PinchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pinch",
		Short: "Run pinch analysis on the heat exchanger network",
		Long: `Build hot and cold composite curves from the stored heat streams,
locate the pinch and report minimum utility targets, candidate
exchanger matches and, when exchangers are installed, network economics.

Examples:
  procdesign pinch
  procdesign pinch --dtmin 15 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPinch(opts, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.DeltaTMin, "dtmin", 0, "minimum approach temperature in °C (default from config)")

	return cmd
}

func runPinch(opts *PinchOptions, cmd *cobra.Command) error {
	if opts.DeltaTMin < 0 {
		return fail(newFormatter(opts.RootOptions, cmd), ExitCommandError, ErrCodeCalc,
			fmt.Sprintf("--dtmin must be >= 0, got %g", opts.DeltaTMin), nil)
	}

	return withSession(opts.RootOptions, cmd, func(ctx context.Context, s *session, f *OutputFormatter) error {
		dTmin := s.cfg.Pinch.DeltaTMin
		if opts.DeltaTMin > 0 {
			dTmin = opts.DeltaTMin
		}

		streams, err := s.store.ListHeatStreams(ctx)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}
		exchangers, err := s.store.ListHeatExchangers(ctx)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}
		f.VerboseLog("Analysing %d heat streams, %d exchangers, ΔTmin %g °C", len(streams), len(exchangers), dTmin)

		out := PinchOutput{
			Pinch:   balance.PinchAnalysis(streams, dTmin),
			Network: balance.MatchNetwork(streams, dTmin),
		}
		if len(exchangers) > 0 {
			opt, err := balance.OptimizeNetwork(streams, exchangers, dTmin, s.cfg.EconomicParams())
			if err != nil {
				return fail(f, ExitFailure, ErrCodeCalc, err.Error(), nil)
			}
			out.Economics = &opt
		}

		return f.Success(out, func(w io.Writer) error {
			return report.WritePinch(w, report.PinchReport{
				Pinch:     out.Pinch,
				Network:   out.Network,
				Economics: out.Economics,
			})
		})
	})
}
