package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/archive"
)

// ArchiveOptions holds flags for the archive commands.
type ArchiveOptions struct {
	*RootOptions
	Dir     string
	MatchID string
}

// NewArchiveCommand creates the archive command and its subcommands.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect the completed-match archive",
		Long: `Inspect the records written for completed matches.

The archive directory and passphrase come from the config file or
CREASE_ARCHIVE_DIR and CREASE_MASTER_KEY.`,
	}
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "archive directory (default from config)")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List archived match ids",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveList(opts, cmd)
		},
	}

	show := &cobra.Command{
		Use:           "show",
		Short:         "Show one archived match record",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveShow(opts, cmd)
		},
	}
	show.Flags().StringVar(&opts.MatchID, "match", "", "match id (required)")
	_ = show.MarkFlagRequired("match")

	cmd.AddCommand(list, show)
	return cmd
}

func (o *ArchiveOptions) open() (*archive.Archive, error) {
	dir := o.Dir
	if dir == "" {
		dir = o.Config.ArchiveDir
	}
	if dir == "" {
		return nil, NewExitError(ExitCommandError, "no archive directory: pass --dir or set archive_dir")
	}
	a, err := archive.Open(dir, o.Config.MasterKey)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	return a, nil
}

func runArchiveList(opts *ArchiveOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	a, err := opts.open()
	if err != nil {
		return err
	}
	ids, err := a.List()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list archive", err)
	}

	return formatter.Emit(ids, func(w io.Writer) error {
		if len(ids) == 0 {
			fmt.Fprintln(w, "No archived matches.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
		return nil
	})
}

func runArchiveShow(opts *ArchiveOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	a, err := opts.open()
	if err != nil {
		return err
	}
	rec, err := a.Load(opts.MatchID)
	if errors.Is(err, os.ErrNotExist) {
		_ = formatter.Error("NOT_ARCHIVED", fmt.Sprintf("match %s is not archived", opts.MatchID), nil)
		return &ExitError{Code: ExitFailure, Message: "not archived", reported: true}
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load record", err)
	}

	return formatter.Emit(rec, func(w io.Writer) error {
		fmt.Fprintf(w, "Match    %s\n", rec.MatchID)
		if rec.FixtureID != "" {
			fmt.Fprintf(w, "Fixture  %s\n", rec.FixtureID)
		}
		fmt.Fprintf(w, "Teams    %s v %s\n", rec.Team1ID, rec.Team2ID)
		if rec.Summary != "" {
			fmt.Fprintf(w, "Result   %s\n", rec.Summary)
		}
		fmt.Fprintf(w, "Archived %s\n", rec.ArchivedAt.Format("2006-01-02 15:04:05Z07:00"))
		for _, in := range rec.Innings {
			label := fmt.Sprintf("Innings %d", in.Number)
			if in.SuperOver {
				label += " (Super Over)"
			}
			fmt.Fprintf(w, "%-22s %-10s %d/%d (%d.%d ov)\n", label, in.BattingTeamID,
				in.TotalRuns, in.TotalWickets, in.CompletedOvers, in.CurrentOverBalls)
		}
		return nil
	})
}
