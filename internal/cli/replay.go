package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/match"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	MatchID  string
}

// ReplayCheck is the replay outcome for one match.
type ReplayCheck struct {
	MatchID string            `json:"match_id"`
	OK      bool              `json:"ok"`
	Code    apperrors.Code    `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
	Diff    string            `json:"diff,omitempty"`
}

// ReplayResult is the JSON payload of the replay command.
type ReplayResult struct {
	Checked  int           `json:"checked"`
	Diverged int           `json:"diverged"`
	Matches  []ReplayCheck `json:"matches"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Check stored innings against their delivery logs",
		Long: `Re-fold each match's delivery log and compare the result with the
stored innings aggregates. Any difference is printed as a diff.

Exit codes:
  0 - Every match replays to its stored state
  1 - One or more matches diverged
  2 - Command error (database not found, etc.)

Examples:
  crease replay --db ./club.db
  crease replay --match 0190c2...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.MatchID, "match", "", "check only this match")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	s, err := opts.openSession(ctx, opts.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	ids := []string{opts.MatchID}
	if opts.MatchID == "" {
		ids, err = s.store.ListMatchIDs(ctx)
		if err != nil {
			return formatter.Fail("failed to list matches", err)
		}
	}

	result := ReplayResult{Matches: []ReplayCheck{}}
	for _, id := range ids {
		formatter.VerboseLog("Replaying %s", id)
		check, err := s.check(ctx, id)
		if err != nil {
			return formatter.Fail(fmt.Sprintf("failed to replay %s", id), err)
		}
		result.Checked++
		if !check.OK {
			result.Diverged++
		}
		result.Matches = append(result.Matches, check)
	}

	err = formatter.Emit(result, func(w io.Writer) error {
		for _, c := range result.Matches {
			if c.OK {
				fmt.Fprintf(w, "✓ %s\n", c.MatchID)
				continue
			}
			fmt.Fprintf(w, "✗ %s: %s: %s\n", c.MatchID, c.Code, c.Message)
			for _, k := range slices.Sorted(maps.Keys(c.Details)) {
				fmt.Fprintf(w, "  %s\n", c.Details[k])
			}
			fmt.Fprint(w, indent(c.Diff))
		}
		fmt.Fprintf(w, "\n%d checked, %d diverged\n", result.Checked, result.Diverged)
		return nil
	})
	if err != nil {
		return err
	}

	if result.Diverged > 0 {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%d of %d matches diverged", result.Diverged, result.Checked),
			reported: true,
		}
	}
	return nil
}

// check verifies one match. Invariant failures become a diverged check;
// anything else is returned.
func (s *session) check(ctx context.Context, id string) (ReplayCheck, error) {
	err := s.engine.Verify(ctx, id)
	if err == nil {
		return ReplayCheck{MatchID: id, OK: true}, nil
	}
	var ae *apperrors.Error
	if !errors.As(err, &ae) || ae.Category != apperrors.CategoryInvariant {
		return ReplayCheck{}, err
	}

	c := ReplayCheck{MatchID: id, Code: ae.Code, Message: ae.Message, Details: ae.Details}
	if ae.Code == apperrors.CodeReplayDiverged {
		c.Diff, err = s.replayDiff(ctx, id)
		if err != nil {
			return ReplayCheck{}, err
		}
	}
	return c, nil
}

// replayDiff diffs each stored innings against the innings re-folded from
// the log.
func (s *session) replayDiff(ctx context.Context, id string) (string, error) {
	h, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return "", err
	}
	snaps, err := s.store.GetInningsByMatch(ctx, id)
	if err != nil {
		return "", err
	}
	log, err := s.store.GetAllDeliveries(ctx, id)
	if err != nil {
		return "", err
	}
	m, err := match.Restore(h, snaps, log)
	if err != nil {
		// Restore only fails when the log cannot be folded at all; the
		// Verify error already says why.
		return "", nil
	}

	var out string
	for _, stored := range snaps {
		n := stored.Setup.Number
		d, err := unifiedJSON(stored, m.InningsByNumber(n),
			fmt.Sprintf("stored/innings-%d", n), fmt.Sprintf("replayed/innings-%d", n))
		if err != nil {
			return "", err
		}
		out += d
	}
	return out, nil
}
