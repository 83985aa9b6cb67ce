package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/report"
)

// YieldOptions holds flags for the yield command.
type YieldOptions struct {
	*RootOptions
	Product string  // main product for the process yield
	Feed    float64 // total feed the process yield is related to
}

// YieldOutput is the output of the yield command.
type YieldOutput struct {
	Efficiency   balance.Efficiency          `json:"material_efficiency"`
	ProcessYield *balance.ProcessYieldResult `json:"process_yield,omitempty"`
	Reactions    []model.Reaction            `json:"reactions"`
}

// NewYieldCommand creates the yield command.
func NewYieldCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &YieldOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "yield",
		Short: "Report reaction yields and material efficiency",
		Long: `Classify the stored streams into feed, product, by-product and
waste, and report material efficiency, the E-factor and the chained
yield of the stored reactions.

With --product, also report how much of that product the reactions form
from a standard feed of every reactant, related to --feed.

Examples:
  procdesign yield
  procdesign yield --product ethanol --feed 200 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runYield(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Product, "product", "", "main product material id")
	cmd.Flags().Float64Var(&opts.Feed, "feed", balance.StandardFeed, "total feed for the process yield")

	return cmd
}

func runYield(opts *YieldOptions, cmd *cobra.Command) error {
	if opts.Feed <= 0 {
		return fail(newFormatter(opts.RootOptions, cmd), ExitCommandError, ErrCodeCalc,
			fmt.Sprintf("--feed must be > 0, got %g", opts.Feed), nil)
	}

	return withSession(opts.RootOptions, cmd, func(ctx context.Context, s *session, f *OutputFormatter) error {
		streams, err := s.store.ListStreams(ctx)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}
		reactions, err := s.store.ListReactions(ctx)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}
		f.VerboseLog("Analysing %d streams, %d reactions", len(streams), len(reactions))

		out := YieldOutput{
			Efficiency: balance.MaterialEfficiency(streams, reactions),
			Reactions:  reactions,
		}
		if out.Reactions == nil {
			out.Reactions = []model.Reaction{}
		}
		if opts.Product != "" {
			py := balance.ProcessYield(reactions, opts.Product, opts.Feed)
			out.ProcessYield = &py
		}

		return f.Success(out, func(w io.Writer) error {
			return report.WriteYield(w, report.YieldReport{
				Efficiency:   out.Efficiency,
				ProcessYield: out.ProcessYield,
				Reactions:    out.Reactions,
			})
		})
	})
}
