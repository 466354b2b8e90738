package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpbridge/internal/errors"
	"github.com/thoreinstein/mcpbridge/internal/mcp"
	"github.com/thoreinstein/mcpbridge/internal/mcp/parser"
	"github.com/thoreinstein/mcpbridge/internal/redact"
	"github.com/thoreinstein/mcpbridge/pkg/fileutil"
)

var (
	serversJSON        bool
	serversShowSecrets bool
	serversOutput      string
)

func init() {
	serversCmd.Flags().BoolVar(&serversJSON, "json", false, "Output in JSON format")
	serversCmd.Flags().BoolVar(&serversShowSecrets, "show-secrets", false, "Reveal masked secrets in env values and args")
	serversCmd.Flags().StringVarP(&serversOutput, "output", "o", "", "Write the JSON export to a file instead of stdout")
	rootCmd.AddCommand(serversCmd)
}

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List configured MCP servers",
	Long: `List the servers in the server definitions file without starting them.

Environment variables whose names suggest a secret (TOKEN, KEY, SECRET,
PASSWORD, AUTH, CREDENTIAL, API_KEY) and values that look like provider
tokens are masked by default. Use --show-secrets to reveal them.

Examples:
  # List servers
  mcpbridge servers

  # Output as JSON
  mcpbridge servers --json

  # Show secret values
  mcpbridge servers --show-secrets

  # Convert a YAML or TOML file to canonical JSON
  mcpbridge servers --servers servers.yaml --show-secrets -o servers.json`,
	Args: cobra.NoArgs,
	RunE: runServers,
}

func runServers(c *cobra.Command, _ []string) error {
	cfg, path, err := loadServers()
	if err != nil {
		return err
	}
	return runServersWithWriter(c.OutOrStdout(), cfg, path)
}

// runServersWithWriter allows injecting a writer for testing.
func runServersWithWriter(w io.Writer, cfg *mcp.Config, path string) error {
	if !serversShowSecrets {
		cfg = maskConfig(cfg)
	}

	if serversJSON || serversOutput != "" {
		data, err := parser.Write(cfg)
		if err != nil {
			return err
		}
		if serversOutput == "" {
			_, err = w.Write(data)
			return err
		}
		changed, err := fileutil.WriteExport(serversOutput, data)
		if err != nil {
			return errors.NewSystemError(errors.Wrapf(err, "writing %s", serversOutput), "")
		}
		if !changed {
			fmt.Fprintf(w, "%s is up to date\n", serversOutput)
			return nil
		}
		fmt.Fprintf(w, "Wrote %d server(s) to %s\n", len(cfg.Servers), serversOutput)
		return nil
	}
	return outputServersTabular(w, cfg, path)
}

// maskConfig returns a copy of cfg with secrets masked.
func maskConfig(cfg *mcp.Config) *mcp.Config {
	masked := mcp.NewConfig()
	for name, s := range cfg.Servers {
		if s == nil {
			masked.Servers[name] = nil
			continue
		}
		clone := s.Clone()
		clone.Env = redact.Env(s.Env)
		clone.Args = redact.Args(s.Args)
		masked.Servers[name] = clone
	}
	return masked
}

func outputServersTabular(w io.Writer, cfg *mcp.Config, path string) error {
	fmt.Fprintf(w, "%s\n", styleTitle.Sprintf("Servers: %s", path))

	names := cfg.Names()
	if len(names) == 0 {
		fmt.Fprintf(w, "  %s\n", styleMuted.Sprint("(no MCP servers configured)"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
		styleHeader.Sprint("NAME"),
		styleHeader.Sprint("COMMAND"),
		styleHeader.Sprint("ENV"),
		styleHeader.Sprint("STATUS"))

	for _, name := range names {
		s := cfg.Servers[name]
		if s == nil {
			fmt.Fprintf(tw, "  %s\t\t\t%s\n", styleName.Sprint(name), styleError.Sprint("invalid"))
			continue
		}

		command := strings.Join(append([]string{s.Command}, s.Args...), " ")
		status := styleOK.Sprint("enabled")
		if s.Disabled {
			status = styleDisabled.Sprint("disabled")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
			styleName.Sprint(name),
			truncate(command, 50),
			envSummary(s.Env),
			status)
	}
	return tw.Flush()
}

// envSummary renders env as sorted KEY=value pairs.
func envSummary(env map[string]string) string {
	if len(env) == 0 {
		return "-"
	}
	pairs := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		pairs = append(pairs, k+"="+env[k])
	}
	return truncate(strings.Join(pairs, " "), 40)
}
