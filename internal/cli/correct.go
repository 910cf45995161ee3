package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/match"
	"github.com/roach88/crease/internal/scorecard"
)

// CorrectionResult is the outcome of a correction command.
type CorrectionResult struct {
	MatchID string             `json:"match_id"`
	Action  string             `json:"action"`
	Removed *delivery.Delivery `json:"removed,omitempty"`
	Phase   match.Phase        `json:"phase"`
	Status  match.Status       `json:"status"`
	Summary string             `json:"summary"`
}

// correction runs one engine call and reports the removed delivery, if any.
type correction func(ctx context.Context, s *session, matchID string) (*delivery.Delivery, error)

// NewCorrectionCommands creates the undo, delete-ball, reopen, cancel and
// delete-result commands.
func NewCorrectionCommands(rootOpts *RootOptions) []*cobra.Command {
	var seq int64

	deleteBall := newCorrectionCommand(rootOpts, "delete-ball", "Delete a ball from the current over",
		`Remove one ball from the current over by its sequence number and replay
the innings without it. Deleting the latest ball is the same as undo.`,
		func(ctx context.Context, s *session, id string) (*delivery.Delivery, error) {
			d, err := s.engine.DeleteBall(ctx, id, seq)
			return &d, err
		})
	deleteBall.Flags().Int64Var(&seq, "seq", 0, "sequence number of the ball (required)")
	_ = deleteBall.MarkFlagRequired("seq")

	return []*cobra.Command{
		newCorrectionCommand(rootOpts, "undo", "Undo the latest ball",
			`Remove the most recent delivery of the open innings and replay the
innings without it.`,
			func(ctx context.Context, s *session, id string) (*delivery.Delivery, error) {
				d, err := s.engine.Undo(ctx, id)
				return &d, err
			}),
		deleteBall,
		newCorrectionCommand(rootOpts, "reopen", "Reopen the latest completed innings",
			`Put the latest completed innings back in progress, clearing the target
or result derived from its end.`,
			func(ctx context.Context, s *session, id string) (*delivery.Delivery, error) {
				return nil, s.engine.Reopen(ctx, id)
			}),
		newCorrectionCommand(rootOpts, "cancel", "Cancel an unfinished match",
			`Abandon a match that has not finished. Its innings and deliveries are
discarded; the audit trail keeps the score at cancellation.`,
			func(ctx context.Context, s *session, id string) (*delivery.Delivery, error) {
				return nil, s.engine.Cancel(ctx, id)
			}),
		newCorrectionCommand(rootOpts, "delete-result", "Delete a completed match",
			`Discard a completed match, its innings and deliveries. The archive
record, if any, is purged.`,
			func(ctx context.Context, s *session, id string) (*delivery.Delivery, error) {
				return nil, s.engine.DeleteResult(ctx, id)
			}),
	}
}

func newCorrectionCommand(rootOpts *RootOptions, use, short, long string, fn correction) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: long + `

Every correction is written to the match's audit trail (see history).

Exit codes:
  0 - Correction applied
  1 - Correction rejected in the current match state
  2 - Command error (database not found, etc.)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrection(opts, use, fn, cmd)
		},
	}
	opts.addFlags(cmd)

	return cmd
}

func runCorrection(opts *MatchOptions, action string, fn correction, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	s, err := opts.openSession(ctx, opts.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := fn(ctx, s, opts.MatchID)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("%s rejected", action), err)
	}

	m, err := s.engine.Match(ctx, opts.MatchID)
	if err != nil {
		return formatter.Fail("failed to reload match", err)
	}
	card := scorecard.Build(m, scorecard.WithNames(s.names(ctx, m)))

	out := CorrectionResult{
		MatchID: m.ID,
		Action:  action,
		Removed: removed,
		Phase:   m.Phase,
		Status:  m.Status,
		Summary: card.Summary(),
	}
	return formatter.Emit(out, func(w io.Writer) error {
		if removed != nil {
			fmt.Fprintf(w, "Removed %s (innings %d, over %d.%d, seq %d)\n",
				removed.Notation(), removed.Innings, removed.Over, removed.Ball, removed.Seq)
		}
		fmt.Fprintf(w, "%s: %s\n", action, out.Summary)
		return nil
	})
}
