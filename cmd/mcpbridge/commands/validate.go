package commands

import (
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpbridge/internal/errors"
	"github.com/thoreinstein/mcpbridge/internal/mcp"
	"github.com/thoreinstein/mcpbridge/internal/mcp/validator"
)

var (
	validateAllowEmpty bool
	validateJSON       bool
)

func init() {
	validateCmd.Flags().BoolVar(&validateAllowEmpty, "allow-empty", false, "Accept a file with no servers")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output the report in JSON format")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the server definitions file",
	Long: `Check every server definition without starting anything.

Errors (missing command, malformed env keys) make the command exit non-zero.
Warnings (command not on PATH, unset ${VAR} references, every server
disabled) are reported but do not fail validation.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(c *cobra.Command, _ []string) error {
	cfg, path, err := loadServers()
	if err != nil {
		return err
	}
	return validateWithWriter(c.OutOrStdout(), cfg, path, exec.LookPath)
}

// validateWithWriter allows injecting a writer and command lookup for testing.
func validateWithWriter(w io.Writer, cfg *mcp.Config, path string, lookPath func(string) (string, error)) error {
	v := validator.New(
		validator.WithAllowEmpty(validateAllowEmpty),
		validator.WithEnvLookup(os.LookupEnv),
		validator.WithCommandCheck(lookPath),
	)
	results := v.Validate(cfg)

	format := validator.FormatText
	if validateJSON {
		format = validator.FormatJSON
	}
	if err := validator.NewReporter(w, format).Report(path, len(cfg.Servers), results); err != nil {
		return err
	}

	if validator.HasErrors(results) {
		n := len(validator.Errors(results))
		return errors.NewUserError(
			errors.Newf("%s: %d error(s) found", path, n),
			"Fix the errors above and run validate again",
		)
	}
	return nil
}
