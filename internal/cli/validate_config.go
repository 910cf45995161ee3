package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/config"
)

// ConfigCheck is the JSON payload of the validate-config command.
type ConfigCheck struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateConfigCommand creates the validate-config command.
func NewValidateConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-config <file>",
		Short: "Check a config file against the schema",
		Long: `Check a crease.yaml file against the config schema and report every
violation with its line and column.

Exit codes:
  0 - Config is valid
  1 - Config has violations
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		// Overrides the root hook: the file under test must not be loaded
		// as the active config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return checkFormat(rootOpts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateConfig(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidateConfig(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read config", err)
	}

	out := ConfigCheck{File: path, Valid: true}
	if err := config.ValidateFile(path, data); err != nil {
		var verr *config.ValidationError
		if !errors.As(err, &verr) {
			return WrapExitError(ExitCommandError, "failed to validate config", err)
		}
		out.Valid = false
		for _, f := range verr.Fields {
			out.Errors = append(out.Errors, f.Error())
		}
	}

	err = formatter.Emit(out, func(w io.Writer) error {
		if out.Valid {
			fmt.Fprintf(w, "%s: valid\n", path)
			return nil
		}
		for _, e := range out.Errors {
			fmt.Fprintln(w, e)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !out.Valid {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%s has %d violations", path, len(out.Errors)),
			reported: true,
		}
	}
	return nil
}
