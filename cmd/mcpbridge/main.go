// Package main is the entry point for the mcpbridge CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpbridge/cmd/mcpbridge/commands"
	"github.com/thoreinstein/mcpbridge/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(report(err))
	}
}

// report prints err and its suggestion to stderr and returns the exit code.
func report(err error) int {
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	var exitErr *errors.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		return errors.ExitUser
	}
	if exitErr.Err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), exitErr.Err)
	}
	if exitErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", color.New(color.Faint).Sprint(exitErr.Suggestion))
	}
	if exitErr.Code == errors.ExitSuccess {
		return errors.ExitUser
	}
	return exitErr.Code
}
