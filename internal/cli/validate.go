package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/virmuran/ProcessDesignPro/internal/flowsheet"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool   `json:"valid"`
	File         string `json:"file"`
	Project      string `json:"project,omitempty"`
	Units        int    `json:"units,omitempty"`
	Streams      int    `json:"streams,omitempty"`
	HeatStreams  int    `json:"heat_streams,omitempty"`
	WaterStreams int    `json:"water_streams,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <project.yaml>",
		Short: "Validate a project file without importing it",
		Long: `Validate a project file without touching any database.

Checks YAML syntax, the project schema, entity invariants, unique ids and
references between entities (stream endpoints, equipment units, exchanger
streams).

Exit codes:
  0 - Project is valid
  1 - Project is invalid
  2 - File cannot be read`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	formatter.VerboseLog("Validating %s", path)

	p, err := flowsheet.Load(path)
	if err != nil {
		var le *flowsheet.LoadError
		if errors.As(err, &le) && le.Code == flowsheet.ErrCodeRead {
			return fail(formatter, ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}

		result := ValidationResult{File: path, ErrorMessage: err.Error()}
		if le != nil {
			result.ErrorCode = string(le.Code)
		}
		if err := formatter.Success(result, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "✗ %s\n", result.ErrorMessage)
			return err
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "project invalid")
	}

	result := ValidationResult{
		Valid:        true,
		File:         path,
		Project:      p.Name,
		Units:        len(p.Units),
		Streams:      len(p.Streams),
		HeatStreams:  len(p.HeatStreams),
		WaterStreams: len(p.WaterStreams),
	}
	return formatter.Success(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ %s is valid (%d units, %d streams, %d heat streams, %d water streams)\n",
			result.Project, result.Units, result.Streams, result.HeatStreams, result.WaterStreams)
		return err
	})
}
