package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/virmuran/ProcessDesignPro/internal/flowsheet"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string // file to write; stdout when empty
	Name   string // project name written to the file
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the project database to a project file",
		Long: `Export every stored entity as a YAML project file.

Balance records are not exported; they are recomputed on import.

Examples:
  procdesign export --db plant.db -o plant.yaml
  procdesign export --db plant.db --name "Plant A" > plant.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&opts.Name, "name", "exported", "project name")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	return withSession(opts.RootOptions, cmd, func(ctx context.Context, s *session, f *OutputFormatter) error {
		p, err := flowsheet.Export(ctx, s.store, opts.Name)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}

		if opts.Output == "" && opts.Format == "json" {
			return f.Success(p, nil)
		}

		data, err := p.Marshal()
		if err != nil {
			return fail(f, ExitFailure, ErrCodeProject, fmt.Sprintf("failed to encode project: %v", err), nil)
		}
		if opts.Output == "" {
			_, err := f.Writer.Write(data)
			return err
		}

		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return fail(f, ExitCommandError, ErrCodeProject, fmt.Sprintf("failed to write %s: %v", opts.Output, err), nil)
		}
		return f.Success(map[string]string{"file": opts.Output, "project": p.Name}, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Exported %s to %s\n", p.Name, opts.Output)
			return err
		})
	})
}
