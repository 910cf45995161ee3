package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	MatchOptions
	Diff bool
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	MatchID string            `json:"match_id"`
	Edits   []store.EditEntry `json:"edits"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{MatchOptions: MatchOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a match's audit trail",
		Long: `Show every correction and lifecycle change recorded for a match, with
the score before and after each one.

Examples:
  crease history --db ./club.db --match 0190c2...
  crease history --match 0190c2... --diff`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "show a unified diff of each entry's before and after state")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	s, err := opts.openSession(ctx, opts.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	edits, err := s.engine.History(ctx, opts.MatchID)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("failed to load history for %s", opts.MatchID), err)
	}

	out := HistoryResult{MatchID: opts.MatchID, Edits: edits}
	return formatter.Emit(out, func(w io.Writer) error {
		if len(edits) == 0 {
			fmt.Fprintln(w, "No edits recorded.")
			return nil
		}
		for _, e := range edits {
			fmt.Fprintf(w, "%4d  %-12s %s  %d/%d -> %d/%d\n",
				e.Seq, e.Action, e.Description,
				e.Before.TotalRuns, e.Before.TotalWickets,
				e.After.TotalRuns, e.After.TotalWickets)
			if !opts.Diff {
				continue
			}
			diff, err := unifiedJSON(e.Before, e.After, "before", "after")
			if err != nil {
				return err
			}
			fmt.Fprint(w, indent(diff))
		}
		return nil
	})
}

// unifiedJSON renders a and b as indented JSON and returns their unified
// diff. Equal values give an empty string.
func unifiedJSON(a, b any, fromName, toName string) (string, error) {
	aj, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", fromName, err)
	}
	bj, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", toName, err)
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(aj) + "\n"),
		B:        difflib.SplitLines(string(bj) + "\n"),
		FromFile: fromName,
		ToFile:   toName,
		Context:  1,
	})
}

func indent(s string) string {
	if s == "" {
		return ""
	}
	out := make([]byte, 0, len(s)+len(s)/8)
	start := true
	for i := 0; i < len(s); i++ {
		if start {
			out = append(out, "      "...)
		}
		out = append(out, s[i])
		start = s[i] == '\n'
	}
	return string(out)
}
