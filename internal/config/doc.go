// Package config provides configuration management for the mcpbridge CLI.
//
// This package handles loading and validating mcpbridge's own settings. The
// MCP server definitions live in a separate file handled by
// internal/mcp/parser; this config only says where to find it and how to
// start the servers.
//
// # Configuration File
//
// The file is named config.yaml and searched in $MCPBRIDGE_CONFIG_DIR, the
// working directory, then ~/.config/mcpbridge:
//
//	servers_file: ~/.config/mcpbridge/servers.yaml # optional
//	policy: isolate                                # strict (default) or isolate
//	handshake_timeout: 10s
//	terminate_timeout: 2s
//
// Every key can be overridden with an MCPBRIDGE_ prefixed environment
// variable, for example MCPBRIDGE_POLICY=isolate.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return errors.Wrap(err, "loading config")
//	}
//
// Loaded configurations are validated automatically; see [Validate].
package config
