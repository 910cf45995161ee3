package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/scorecard"
)

// MatchOptions holds the flags shared by commands that act on one match.
type MatchOptions struct {
	*RootOptions
	Database string
	MatchID  string
}

func (o *MatchOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&o.MatchID, "match", "", "match id (required)")
	_ = cmd.MarkFlagRequired("match")
}

// NewScorecardCommand creates the scorecard command.
func NewScorecardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scorecard",
		Short: "Print a match scorecard",
		Long: `Print the batting and bowling cards, fall of wickets and partnerships
for every innings of a match, derived from its delivery log.

Examples:
  crease scorecard --db ./club.db --match 0190c2...
  crease scorecard --match 0190c2... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScorecard(opts, cmd)
		},
	}
	opts.addFlags(cmd)

	return cmd
}

func runScorecard(opts *MatchOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	s, err := opts.openSession(ctx, opts.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := s.engine.Match(ctx, opts.MatchID)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("failed to load match %s", opts.MatchID), err)
	}
	card := scorecard.Build(m, scorecard.WithNames(s.names(ctx, m)))

	return formatter.Emit(card, func(w io.Writer) error {
		return scorecard.Render(w, card)
	})
}
