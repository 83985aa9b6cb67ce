package cli

import (
	"context"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/report"
)

// WaterOutput is the output of the water command.
type WaterOutput struct {
	Account      balance.WaterAccount         `json:"water_balance"`
	Contaminants []balance.ContaminantAccount `json:"contaminants"`
	Optimization balance.WaterOptimization    `json:"optimization"`
	Footprint    balance.Footprint            `json:"footprint"`
}

// NewWaterCommand creates the water command.
func NewWaterCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "water",
		Short: "Analyse the water network",
		Long: `Report the network water balance, a load balance for every
contaminant measured on any stream, reuse opportunities with their
savings, and the water footprint.

Prices and reuse limits come from the water section of the config.

Examples:
  procdesign water
  procdesign water --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWater(rootOpts, cmd)
		},
	}
	return cmd
}

func runWater(opts *RootOptions, cmd *cobra.Command) error {
	return withSession(opts, cmd, func(ctx context.Context, s *session, f *OutputFormatter) error {
		streams, err := s.store.ListWaterStreams(ctx)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}
		units, err := s.store.ListTreatmentUnits(ctx)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}

		out := WaterOutput{
			Account:      balance.OverallWaterBalance(streams),
			Contaminants: []balance.ContaminantAccount{},
			Optimization: balance.OptimizeWaterNetwork(streams, s.cfg.WaterParams()),
			Footprint:    balance.WaterFootprint(streams, units),
		}
		for _, c := range contaminants(streams) {
			out.Contaminants = append(out.Contaminants, balance.ContaminantBalance(streams, units, c))
		}

		return f.Success(out, func(w io.Writer) error {
			return report.WriteWater(w, report.WaterReport{
				Account:      out.Account,
				Contaminants: out.Contaminants,
				Optimization: out.Optimization,
				Footprint:    out.Footprint,
			})
		})
	})
}

// contaminants returns every quality parameter measured on any stream,
// sorted.
func contaminants(streams []model.WaterStream) []string {
	seen := map[string]bool{}
	var names []string
	for _, ws := range streams {
		for name := range ws.Quality {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
