package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpbridge/cmd"
	"github.com/thoreinstein/mcpbridge/internal/errors"
	"github.com/thoreinstein/mcpbridge/internal/mcp"
	"github.com/thoreinstein/mcpbridge/internal/mcp/parser"
	"github.com/thoreinstein/mcpbridge/internal/paths"
	"github.com/thoreinstein/mcpbridge/internal/toolset"
)

// Output styles. fatih/color drops the escapes when stdout is not a terminal
// or NO_COLOR is set.
var (
	styleHeader   = color.New(color.Bold)
	styleName     = color.New(color.FgGreen)
	styleTitle    = color.New(color.FgCyan, color.Bold)
	styleMuted    = color.New(color.FgHiBlack)
	styleError    = color.New(color.FgRed)
	styleOK       = color.New(color.FgGreen)
	styleDisabled = styleMuted
)

// launcher replaces the subprocess launcher in tests.
var launcher toolset.Launcher

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// loadServers discovers and parses the server definitions file.
func loadServers() (*mcp.Config, string, error) {
	path, err := paths.DiscoverServersFile(serversFlag, settings().ServersFile)
	if err != nil {
		return nil, "", errors.NewUserError(err, "Pass an existing file with --servers")
	}

	cfg, err := parser.ParseFile(path)
	if err != nil {
		return nil, path, errors.NewUserError(err, "Run: mcpbridge validate")
	}
	cfg.Normalize()
	return cfg, path, nil
}

// startServers launches every enabled server with ${VAR} references
// expanded from this process' environment.
func startServers(ctx context.Context, logger *slog.Logger, servers *mcp.Config) ([]*toolset.Adapter, toolset.CleanupFunc, error) {
	s := settings()
	policy, err := toolset.ParsePolicy(s.Policy)
	if err != nil {
		return nil, nil, errors.NewUserError(err, "Use --policy strict or --policy isolate")
	}

	l := launcher
	if l == nil {
		l = &toolset.CommandLauncher{
			TerminateDuration: s.TerminateTimeout,
			Stderr:            os.Stderr,
		}
	}

	expanded := servers.ExpandEnv(os.LookupEnv)
	coordinator := toolset.New(logger,
		toolset.WithLauncher(l),
		toolset.WithPolicy(policy),
		toolset.WithHandshakeTimeout(s.HandshakeTimeout),
		toolset.WithClientInfo(toolset.DefaultClientName, cmd.Version),
	)

	adapters, cleanup, err := coordinator.Initialize(ctx, expanded.Servers)
	if err != nil {
		return nil, nil, startupError(err)
	}
	for _, failure := range coordinator.Failures() {
		logger.Warn("server skipped", "error", failure)
	}
	return adapters, cleanup, nil
}

func startupError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return errors.NewSystemError(err, "")
	case errors.Is(err, toolset.ErrSpawn):
		return errors.NewSystemError(err, "Check the server command with: mcpbridge validate")
	default:
		return errors.NewSystemError(err, "Run with -vv to see the server exchange")
	}
}

// cleanupAfter runs cleanup and keeps the first error.
func cleanupAfter(cleanup toolset.CleanupFunc, errp *error) {
	if err := cleanup(); err != nil && *errp == nil {
		*errp = errors.NewSystemError(err, "")
	}
}
