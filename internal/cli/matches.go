package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/match"
)

// MatchesOptions holds flags for the matches command.
type MatchesOptions struct {
	*RootOptions
	Database string
}

// MatchSummary is one line of the matches listing.
type MatchSummary struct {
	ID      string       `json:"id"`
	Team1ID string       `json:"team1_id"`
	Team2ID string       `json:"team2_id"`
	Phase   match.Phase  `json:"phase"`
	Status  match.Status `json:"status"`
	Result  string       `json:"result,omitempty"`
}

// NewMatchesCommand creates the matches command.
func NewMatchesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List stored matches",
		Long: `List every match in the database with its phase, status and result.

Examples:
  crease matches --db ./club.db
  crease matches --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatches(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runMatches(opts *MatchesOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	s, err := opts.openSession(ctx, opts.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	headers, err := s.engine.Matches(ctx)
	if err != nil {
		return formatter.Fail("failed to list matches", err)
	}

	out := make([]MatchSummary, 0, len(headers))
	for _, h := range headers {
		ms := MatchSummary{
			ID:      h.ID,
			Team1ID: h.Setup.Team1ID,
			Team2ID: h.Setup.Team2ID,
			Phase:   h.Phase,
			Status:  h.Status,
		}
		if h.Result != nil {
			ms.Result = h.Result.Summary(nil)
		}
		out = append(out, ms)
	}

	return formatter.Emit(out, func(w io.Writer) error {
		if len(out) == 0 {
			fmt.Fprintln(w, "No matches found.")
			return nil
		}
		for _, ms := range out {
			line := fmt.Sprintf("%s  %s v %s  %s  %s", ms.ID, ms.Team1ID, ms.Team2ID, ms.Status, ms.Phase)
			if ms.Result != "" {
				line += "  " + ms.Result
			}
			fmt.Fprintln(w, line)
		}
		return nil
	})
}
