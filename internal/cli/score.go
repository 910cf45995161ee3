package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/harness"
	"github.com/roach88/crease/internal/scorecard"
	"github.com/roach88/crease/internal/store"
)

// ScoreOptions holds flags for the score command.
type ScoreOptions struct {
	*RootOptions
	Database      string
	Deterministic bool
}

// ScoreResult is the JSON payload of the score command.
type ScoreResult struct {
	MatchID string               `json:"match_id"`
	Pass    bool                 `json:"pass"`
	Errors  []string             `json:"errors,omitempty"`
	Steps   []harness.StepResult `json:"steps"`
	Card    *scorecard.Card      `json:"card"`
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "score <scenario.yaml>",
		Short: "Score a scripted match into a database",
		Long: `Play a match scenario through the scoring engine and store it.

The scenario's calls are recorded exactly as a live scorer would make them.
The final scorecard is printed and the stored log is replayed to check it.

Exit codes:
  0 - Every call behaved as scripted
  1 - A call or expectation failed
  2 - Command error (invalid scenario, database not found, etc.)

Examples:
  crease score final.yaml --db ./club.db
  crease score final.yaml --deterministic --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().BoolVar(&opts.Deterministic, "deterministic", false, "use sequential ids and a fixed clock")

	return cmd
}

func runScore(opts *ScoreOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	sc, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	st, err := store.Open(opts.dbPath(opts.Database))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	a, err := opts.openArchive()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	engOpts := archiveOptions(a)
	if !opts.Deterministic {
		engOpts = append(engOpts,
			engine.WithIDGenerator(engine.UUIDv7Generator{}),
			engine.WithNow(time.Now),
		)
	}

	formatter.VerboseLog("Scoring %s (%d steps) into %s", sc.Name, len(sc.Steps), opts.dbPath(opts.Database))
	result, err := harness.Run(ctx, sc, st,
		harness.WithEngineOptions(engOpts...),
		harness.WithDefaultRules(opts.Config.Rules.Match()),
	)
	if err != nil {
		return formatter.Fail("failed to score scenario", err)
	}

	out := ScoreResult{
		MatchID: result.MatchID,
		Pass:    result.Pass,
		Errors:  result.Errors,
		Steps:   result.Steps,
		Card:    result.Card,
	}
	err = formatter.Emit(out, func(w io.Writer) error {
		for _, s := range result.Steps {
			if s.Error != "" {
				formatter.VerboseLog("  %d. %s -> %s", s.Index, s.Action, s.Error)
			} else {
				formatter.VerboseLog("  %d. %s -> %s", s.Index, s.Action, s.Score)
			}
		}
		if err := scorecard.Render(w, result.Card); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nMatch %s\n", result.MatchID)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !result.Pass {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("scenario %s failed", sc.Name),
			reported: true,
		}
	}
	return nil
}
