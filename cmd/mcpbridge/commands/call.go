package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thoreinstein/mcpbridge/internal/errors"
	"github.com/thoreinstein/mcpbridge/internal/logging"
	"github.com/thoreinstein/mcpbridge/internal/toolset"
	"github.com/thoreinstein/mcpbridge/pkg/fileutil"
)

var (
	callArgs     string
	callArgsFile string
)

func init() {
	callCmd.Flags().StringVar(&callArgs, "args", "", "Tool arguments as a JSON object")
	callCmd.Flags().StringVar(&callArgsFile, "args-file", "", "Read tool arguments from a JSON file (- for stdin)")
	callCmd.MarkFlagsMutuallyExclusive("args", "args-file")
	rootCmd.AddCommand(callCmd)
}

var callCmd = &cobra.Command{
	Use:   "call [server/]tool",
	Short: "Call a tool and print its text result",
	Long: `Start every enabled server, call one tool, print its text result, and
shut the servers down again.

A bare tool name must be unique across servers; qualify it as server/tool
otherwise. Without a tool argument on a terminal, an interactive finder
lists every tool.

Examples:
  # Call a tool without arguments
  mcpbridge call ping

  # Qualify a tool offered by several servers
  mcpbridge call github/search_issues --args '{"query": "is:open"}'

  # Read arguments from a file
  mcpbridge call write_file --args-file args.json

  # Pick a tool interactively
  mcpbridge call`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCall,
}

func runCall(c *cobra.Command, args []string) (err error) {
	input, err := readArgs(callArgs, callArgsFile, c.InOrStdin())
	if err != nil {
		return err
	}

	ref := ""
	if len(args) == 1 {
		ref = args[0]
	} else if !isInteractive() {
		return errors.NewUserError(errors.New("tool name required"), "Run: mcpbridge tools")
	}

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

	var tool *toolset.Adapter
	if ref == "" {
		tool, err = pickTool(adapters)
		if err != nil || tool == nil {
			return err
		}
	} else {
		tool, err = resolveTool(adapters, ref)
		if err != nil {
			return err
		}
	}

	result, err := tool.Invoke(ctx, input)
	if err != nil {
		return callError(err)
	}

	w := c.OutOrStdout()
	fmt.Fprint(w, result)
	if !strings.HasSuffix(result, "\n") {
		fmt.Fprintln(w)
	}
	return nil
}

// readArgs decodes the tool input from --args, --args-file, or nothing.
func readArgs(inline, file string, stdin io.Reader) (map[string]any, error) {
	var data []byte
	switch {
	case inline != "":
		data = []byte(inline)
	case file == "-":
		b, err := fileutil.ReadAllWithLimit(stdin)
		if err != nil {
			return nil, errors.NewSystemError(errors.Wrap(err, "reading arguments from stdin"), "")
		}
		data = b
	case file != "":
		b, err := fileutil.ReadFileWithLimit(file)
		if err != nil {
			return nil, errors.NewUserError(errors.Wrap(err, "reading arguments file"), "")
		}
		data = b
	default:
		return map[string]any{}, nil
	}

	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrInvalidArguments, "%v", err),
			`Pass a JSON object, e.g. --args '{"path": "README.md"}'`,
		)
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

// resolveTool finds the adapter named by ref. A server/tool reference is
// tried first; a bare name must match exactly one adapter.
func resolveTool(adapters []*toolset.Adapter, ref string) (*toolset.Adapter, error) {
	if server, name, ok := strings.Cut(ref, "/"); ok {
		for _, a := range adapters {
			if a.Server() == server && a.Name() == name {
				return a, nil
			}
		}
	}

	var matches []*toolset.Adapter
	for _, a := range adapters {
		if a.Name() == ref {
			matches = append(matches, a)
		}
	}

	switch len(matches) {
	case 0:
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "tool %q", ref),
			"Run: mcpbridge tools",
		)
	case 1:
		return matches[0], nil
	default:
		qualified := make([]string, len(matches))
		for i, a := range matches {
			qualified[i] = qualifiedName(a)
		}
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrAmbiguousTool, "%q is offered by %d servers", ref, len(matches)),
			"Use one of: "+strings.Join(qualified, ", "),
		)
	}
}

func qualifiedName(a *toolset.Adapter) string {
	return a.Server() + "/" + a.Name()
}

// pickTool lets the user choose a tool interactively. It returns nil when
// the user aborts.
func pickTool(adapters []*toolset.Adapter) (*toolset.Adapter, error) {
	if len(adapters) == 0 {
		return nil, errors.NewUserError(errors.New("no tools available"), "Run: mcpbridge servers")
	}

	idx, err := fuzzyfinder.Find(
		adapters,
		func(i int) string {
			return qualifiedName(adapters[i])
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			a := adapters[i]
			return fmt.Sprintf("Server: %s\nTool: %s\n\nDescription:\n%s\n\nInput schema:\n%s",
				a.Server(),
				a.Name(),
				a.Description(),
				a.InputSchema(),
			)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "interactive tool selection failed")
	}
	return adapters[idx], nil
}

// isInteractive reports whether stdin and stdout are both terminals.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// callError maps tool call failures to exit codes. Failures reported by the
// tool or caused by the input are user errors; the rest are system errors.
func callError(err error) error {
	switch {
	case errors.Is(err, toolset.ErrToolExecution), errors.Is(err, toolset.ErrInvalidArguments):
		return errors.NewUserError(err, "")
	default:
		return errors.NewSystemError(err, "")
	}
}
