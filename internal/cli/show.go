package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/report"
)

// ShowResult is the output of the show command. A nil balance has not been
// calculated.
type ShowResult struct {
	Unit  model.ProcessUnit      `json:"unit"`
	Mass  *model.MaterialBalance `json:"material_balance,omitempty"`
	Heat  *model.HeatBalance     `json:"heat_balance,omitempty"`
	Water *model.WaterBalance    `json:"water_balance,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <unit-id>",
		Short: "Show the stored balances of a unit",
		Long: `Show the material, heat and water balance records of one unit.

Nothing is recalculated; run calc first to refresh stale records.

Examples:
  procdesign show U1
  procdesign show U1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runShow(opts *RootOptions, unitID string, cmd *cobra.Command) error {
	return withSession(opts, cmd, func(ctx context.Context, s *session, f *OutputFormatter) error {
		unit, err := s.store.GetUnit(ctx, unitID)
		if errors.Is(err, model.ErrNotFound) {
			return fail(f, ExitFailure, ErrCodeNotFound, fmt.Sprintf("unit %q not found", unitID), nil)
		}
		if err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}

		result := ShowResult{Unit: unit}
		if result.Mass, err = optional(s.store.GetMaterialBalance(ctx, unitID)); err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}
		if result.Heat, err = optional(s.store.GetHeatBalance(ctx, unitID)); err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}
		if result.Water, err = optional(s.store.GetWaterBalance(ctx, unitID)); err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}

		return f.Success(result, func(w io.Writer) error {
			return report.WriteUnit(w, report.UnitReport{
				Unit:  result.Unit,
				Mass:  result.Mass,
				Heat:  result.Heat,
				Water: result.Water,
			})
		})
	})
}

// optional maps a not-found lookup to nil.
func optional[T any](v T, err error) (*T, error) {
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
