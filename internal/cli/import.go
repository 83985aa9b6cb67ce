package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/virmuran/ProcessDesignPro/internal/flowsheet"
)

// ImportResult is the output of the import command.
type ImportResult struct {
	Project   string         `json:"project"`
	Materials int            `json:"materials"`
	Units     int            `json:"units"`
	Streams   int            `json:"streams"`
	Pass      PassSummary    `json:"pass"`
	Counts    map[string]int `json:"counts,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <project.yaml>",
		Short: "Import a project file and recalculate every balance",
		Long: `Import a project file into the project database.

Entities are written referenced-first (materials, units, streams, then
equipment and the heat and water networks) and every unit balance is then
recomputed in one pass. Entities already stored but absent from the file
are left alone.

Exit codes:
  0 - Imported, every calculation ran
  1 - Imported, but a calculation failed
  2 - Command error (unreadable or invalid project, database error)

Examples:
  procdesign import plant.yaml --db plant.db
  procdesign import plant.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	p, err := flowsheet.Load(path)
	if err != nil {
		return fail(newFormatter(opts, cmd), ExitCommandError, ErrCodeProject, err.Error(), map[string]string{"file": path})
	}

	return withSession(opts, cmd, func(ctx context.Context, s *session, f *OutputFormatter) error {
		report, err := flowsheet.Import(ctx, s.store, s.engine, p)
		summary := summarizePass(report)
		if err != nil && len(report.Outcomes) == 0 {
			return fail(f, ExitCommandError, ErrCodeProject, fmt.Sprintf("import failed: %v", err), nil)
		}

		result := ImportResult{
			Project:   p.Name,
			Materials: len(p.Materials),
			Units:     len(p.Units),
			Streams:   len(p.Streams),
			Pass:      summary,
			Counts: map[string]int{
				"equipment":       len(p.Equipment),
				"heat_streams":    len(p.HeatStreams),
				"heat_exchangers": len(p.HeatExchangers),
				"water_streams":   len(p.WaterStreams),
				"treatment_units": len(p.TreatmentUnits),
			},
		}
		if err := f.SuccessPass(report.PassToken, result, func(w io.Writer) error {
			if _, err := fmt.Fprintf(w, "Imported %s: %d materials, %d units, %d streams\n",
				result.Project, result.Materials, result.Units, result.Streams); err != nil {
				return err
			}
			return summary.writeText(w)
		}); err != nil {
			return err
		}

		if err != nil || summary.Failed() {
			return NewExitError(ExitFailure, "one or more calculations failed")
		}
		return nil
	})
}
