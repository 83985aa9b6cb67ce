package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/virmuran/ProcessDesignPro/internal/model"
	"github.com/virmuran/ProcessDesignPro/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	PassToken string // only changes of this pass
	Entity    string // "<kind>:<id>", one entity's history
}

// TraceResult holds the change log rows selected by the trace command.
type TraceResult struct {
	PassToken string               `json:"pass_token,omitempty"`
	Entity    string               `json:"entity,omitempty"`
	Changes   []store.ChangeRecord `json:"changes"`
	Stats     TraceStats           `json:"stats"`
}

// TraceStats holds summary counts for the selected changes.
type TraceStats struct {
	Total    int            `json:"total"`
	ByModule map[string]int `json:"by_module"`
	Passes   int            `json:"passes"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Query the change log",
		Long: `Query the change log of the project database.

Every applied change is recorded with its version, payload hash, author
and the token of the propagation pass that carried it. Without flags the
whole log is listed in time order.

Examples:
  procdesign trace
  procdesign trace --pass 01927f6c-8d3e-7b4a-9c1d-2e3f4a5b6c7d
  procdesign trace --entity stream:S1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PassToken, "pass", "", "filter to one propagation pass")
	cmd.Flags().StringVar(&opts.Entity, "entity", "", "history of one entity, as kind:id")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	var kind model.Kind
	var entityID string
	if opts.Entity != "" {
		var err error
		kind, entityID, err = parseEntityRef(opts.Entity)
		if err != nil {
			return fail(newFormatter(opts.RootOptions, cmd), ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
	}

	return withSession(opts.RootOptions, cmd, func(ctx context.Context, s *session, f *OutputFormatter) error {
		changes, err := s.store.ListChanges(ctx, kind, entityID)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeDatabase, err.Error(), nil)
		}

		result := TraceResult{
			PassToken: opts.PassToken,
			Entity:    opts.Entity,
			Changes:   filterByPass(changes, opts.PassToken),
		}
		result.Stats = traceStats(result.Changes)

		return f.Success(result, func(w io.Writer) error {
			return writeTraceText(w, result)
		})
	})
}

// parseEntityRef splits "kind:id".
func parseEntityRef(ref string) (model.Kind, string, error) {
	k, id, ok := strings.Cut(ref, ":")
	if !ok {
		return "", "", fmt.Errorf("entity %q must be kind:id", ref)
	}
	kind, err := model.ParseKind(k)
	if err != nil {
		return "", "", err
	}
	if id == "" {
		return "", "", fmt.Errorf("entity %q has no id", ref)
	}
	return kind, id, nil
}

func filterByPass(changes []store.ChangeRecord, passToken string) []store.ChangeRecord {
	out := make([]store.ChangeRecord, 0, len(changes))
	for _, c := range changes {
		if passToken == "" || c.PassToken == passToken {
			out = append(out, c)
		}
	}
	return out
}

func traceStats(changes []store.ChangeRecord) TraceStats {
	stats := TraceStats{Total: len(changes), ByModule: map[string]int{}}
	passes := map[string]bool{}
	for _, c := range changes {
		stats.ByModule[string(c.Module)]++
		if c.PassToken != "" {
			passes[c.PassToken] = true
		}
	}
	stats.Passes = len(passes)
	return stats
}

func writeTraceText(w io.Writer, result TraceResult) error {
	if len(result.Changes) == 0 {
		_, err := fmt.Fprintln(w, "No changes recorded.")
		return err
	}

	for _, c := range result.Changes {
		if _, err := fmt.Fprintf(w, "%s  %-9s %-10s v%-3d %-6s by %s  pass %s\n",
			c.ChangedAt, c.Module, c.EntityID, c.Version, c.Operation, c.ChangedBy, c.PassToken); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d change(s) across %d pass(es)\n", result.Stats.Total, result.Stats.Passes)
	return err
}
