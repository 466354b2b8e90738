// Package mcp provides the canonical MCP (Model Context Protocol) server
// configuration types consumed by the toolset coordinator.
//
// # Server Configuration
//
// A [Server] describes one stdio server process:
//
//	server := &mcp.Server{
//	    Name:    "github",
//	    Command: "npx",
//	    Args:    []string{"-y", "@modelcontextprotocol/server-github"},
//	    Env:     map[string]string{"GITHUB_TOKEN": "${GITHUB_TOKEN}"},
//	}
//
// Env holds overrides only. The spawned process receives exactly these
// variables plus PATH, which is inherited from the parent when absent.
//
// # Configuration Container
//
// The [Config] type holds a collection of server configurations keyed by
// name. [Config.Names] returns the keys in the deterministic order used for
// startup and logging:
//
//	config := mcp.NewConfig()
//	config.Servers["github"] = server
//	for _, name := range config.Names() {
//	    ...
//	}
//
// # Forward Compatibility
//
// Both [Server] and [Config] preserve unknown JSON fields during
// serialization, so fields understood by other MCP clients (for example
// "type" or "cwd") survive a load/save cycle.
package mcp
