// Package commands implements the CLI commands for mcpbridge.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpbridge/cmd"
	"github.com/thoreinstein/mcpbridge/internal/config"
	"github.com/thoreinstein/mcpbridge/internal/errors"
	"github.com/thoreinstein/mcpbridge/internal/logging"
)

// debugEnv raises verbosity when no -v flag is given: 1 or true for debug,
// 2 for trace.
const debugEnv = "MCPBRIDGE_DEBUG"

var (
	// serversFlag holds the value of the --servers flag.
	serversFlag string

	// configFlag holds the value of the --config flag.
	configFlag string

	// verbosity holds the count of -v flags.
	verbosity int

	// quiet holds the value of the -q/--quiet flag.
	quiet bool

	// logFormat holds the value of the --log-format flag.
	logFormat string

	// logFile holds the path to the log file.
	logFile string
)

var (
	// appConfig is the loaded application config.
	appConfig *config.Config

	// configLoadErr holds any error that occurred during config loading.
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&serversFlag, "servers", "",
		"server definitions file (default: ./.mcp.json, then the user config dir)")
	flags.StringVar(&configFlag, "config", "",
		"application config file")
	flags.CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	flags.BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	flags.StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	flags.StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	flags.String("policy", config.DefaultPolicy,
		"startup failure policy: strict, isolate")
	flags.Duration("handshake-timeout", config.DefaultHandshakeTimeout,
		"per-server initialize and tools/list deadline (0 disables)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("mcpbridge version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()

	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag(config.KeyPolicy, flags.Lookup("policy"))
	_ = viper.BindPFlag(config.KeyHandshakeTimeout, flags.Lookup("handshake-timeout"))

	appConfig, configLoadErr = config.Load(configFlag)
}

var rootCmd = &cobra.Command{
	Use:   "mcpbridge",
	Short: "Start MCP servers and call their tools",
	Long: `mcpbridge launches the MCP servers described in a server definitions
file, connects to each over stdio, and exposes the tools they advertise.

Servers are started together and released together. Under the default
"strict" policy one failing server aborts the whole startup; "isolate"
drops the failing server and keeps the rest.

Server definitions are read from --servers, then the servers_file config
key, then ./.mcp.json, then the user config directory.`,
	Example: `  # List configured servers
  mcpbridge servers

  # Check the server definitions
  mcpbridge validate

  # Show every tool the servers advertise
  mcpbridge tools

  # Call a tool
  mcpbridge call filesystem/read_file --args '{"path": "README.md"}'`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Initialize logging first
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		if configLoadErr != nil {
			return errors.NewUserError(configLoadErr, "Check the config file and flag values")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv(debugEnv); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	handlers := []slog.Handler{
		logging.NewFormatHandler(cmd.ErrOrStderr(), logging.Format(logFormat), level),
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, logging.NewFormatHandler(f, logging.FormatJSON, level))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// settings returns the loaded application config, or the defaults when
// loading was skipped.
func settings() *config.Config {
	if appConfig != nil {
		return appConfig
	}
	return &config.Config{
		Policy:           config.DefaultPolicy,
		HandshakeTimeout: config.DefaultHandshakeTimeout,
		TerminateTimeout: config.DefaultTerminateTimeout,
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return errors.Wrap(rootCmd.ExecuteContext(ctx), "executing root command")
}
