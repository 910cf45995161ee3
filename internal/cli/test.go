package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-file-or-dir>",
		Short: "Run match scenarios",
		Long: `Run match scenarios through the scoring engine.

Each scenario is played in its own temporary database with sequential ids
and a fixed clock, so results are reproducible.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  crease test ./scenarios
  crease test ./scenarios/final.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(path); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenario path not found: %s", path))
	}

	workDir, err := os.MkdirTemp("", "crease-test-")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create work dir", err)
	}
	defer os.RemoveAll(workDir)
	formatter.VerboseLog("Running scenarios from %s in %s", path, workDir)

	result, err := harness.RunSuite(cmd.Context(), path, workDir,
		harness.WithDefaultRules(opts.Config.Rules.Match()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenarios", err)
	}

	err = formatter.Emit(result, func(w io.Writer) error {
		return outputTestText(w, result)
	})
	if err != nil {
		return err
	}

	if result.Failed > 0 {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.TotalScenarios),
			reported: true,
		}
	}
	return nil
}

func outputTestText(w io.Writer, result *harness.SuiteResult) error {
	for _, f := range result.Failures {
		name := f.Scenario
		if name == "" {
			name = filepath.Base(f.ScenarioPath)
		}
		fmt.Fprintf(w, "✗ %s\n", name)
		for _, e := range f.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.TotalScenarios)
	return nil
}
