package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpbridge/internal/logging"
	"github.com/thoreinstein/mcpbridge/internal/toolset"
)

var toolsJSON bool

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Output in JSON format, including input schemas")
	rootCmd.AddCommand(toolsCmd)
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools every server advertises",
	Long: `Start every enabled server, list the tools they advertise in server
order, and shut the servers down again.

Examples:
  # Table of tools
  mcpbridge tools

  # Tool descriptors with input schemas
  mcpbridge tools --json`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

// toolInfoJSON represents a tool in JSON output format.
type toolInfoJSON struct {
	Server      string          `json:"server"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

func runTools(c *cobra.Command, _ []string) (err error) {
	cfg, _, err := loadServers()
	if err != nil {
		return err
	}

	ctx := c.Context()
	adapters, cleanup, err := startServers(ctx, logging.FromContext(ctx), cfg)
	if err != nil {
		return err
	}
	defer cleanupAfter(cleanup, &err)

	if toolsJSON {
		return outputToolsJSON(c.OutOrStdout(), adapters)
	}
	return outputToolsTabular(c.OutOrStdout(), adapters)
}

func outputToolsJSON(w io.Writer, adapters []*toolset.Adapter) error {
	output := make([]toolInfoJSON, 0, len(adapters))
	for _, a := range adapters {
		output = append(output, toolInfoJSON{
			Server:      a.Server(),
			Name:        a.Name(),
			Description: a.Description(),
			InputSchema: a.InputSchema(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputToolsTabular(w io.Writer, adapters []*toolset.Adapter) error {
	if len(adapters) == 0 {
		fmt.Fprintln(w, "No tools available")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		styleHeader.Sprint("SERVER"),
		styleHeader.Sprint("TOOL"),
		styleHeader.Sprint("DESCRIPTION"))
	for _, a := range adapters {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			a.Server(),
			styleName.Sprint(a.Name()),
			truncate(a.Description(), 60))
	}
	return tw.Flush()
}
