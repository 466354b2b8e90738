// Command echo-server is a stdio MCP server with predictable tools, for
// trying mcpbridge end to end:
//
//	mcpbridge --servers servers.json tools
//
// with servers.json containing {"echo": {"command": "echo-server"}}.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/thoreinstein/mcpbridge/internal/testutil/echoserver"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A client closing stdin or a signal is a normal shutdown.
	if err := echoserver.Run(ctx); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "echo-server:", err)
		os.Exit(1)
	}
}
