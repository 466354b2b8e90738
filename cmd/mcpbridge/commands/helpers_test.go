package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thoreinstein/mcpbridge/internal/config"
	"github.com/thoreinstein/mcpbridge/internal/logging"
	"github.com/thoreinstein/mcpbridge/internal/mcp"
	"github.com/thoreinstein/mcpbridge/internal/testutil/echoserver"
	"github.com/thoreinstein/mcpbridge/internal/toolset"
)

// inMemoryLauncher serves the echo server over in-memory transports.
func inMemoryLauncher() toolset.Launcher {
	return toolset.LauncherFunc(func(ctx context.Context, _ string, _ *mcp.Server) (sdkmcp.Connection, error) {
		serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
		if _, err := echoserver.New().Connect(ctx, serverTransport, nil); err != nil {
			return nil, err
		}
		return clientTransport.Connect(ctx)
	})
}

// startAdapters initializes echo servers with the given names.
func startAdapters(t *testing.T, names ...string) []*toolset.Adapter {
	t.Helper()
	servers := make(map[string]*mcp.Server, len(names))
	for _, n := range names {
		servers[n] = &mcp.Server{Name: n, Command: echoserver.Name}
	}

	adapters, cleanup, err := toolset.Initialize(t.Context(), servers, logging.ForTest(t),
		toolset.WithLauncher(inMemoryLauncher()))
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() {
		if err := cleanup(); err != nil {
			t.Errorf("cleanup() error = %v", err)
		}
	})
	return adapters
}

// writeServers writes a server definitions file and returns its path.
func writeServers(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servers.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing servers file: %v", err)
	}
	return path
}

// runCLI executes the root command with args against in-memory servers and
// returns its standard output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.ConfigDirEnv, t.TempDir())

	launcher = inMemoryLauncher()
	t.Cleanup(func() {
		launcher = nil
		serversFlag, configFlag = "", ""
		callArgs, callArgsFile = "", ""
		serversJSON, serversShowSecrets, serversOutput, toolsJSON = false, false, "", false
		validateAllowEmpty, validateJSON = false, false
		verbosity, quiet = 0, false
		appConfig, configLoadErr = nil, nil
		flags := rootCmd.PersistentFlags()
		_ = flags.Set("policy", config.DefaultPolicy)
		_ = flags.Set("handshake-timeout", config.DefaultHandshakeTimeout.String())
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}
