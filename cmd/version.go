// Package cmd holds build metadata shared by the mcpbridge binaries,
// injected via ldflags.
package cmd

// Build-time variables set via ldflags.
var (
	// Version is the semantic version of the build. It is also reported to
	// MCP servers as the client version.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)
