// Package paths provides path resolution for mcpbridge configuration files.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux, the application directory is
// ~/.config/mcpbridge.
//
// # Server File Discovery
//
// [DiscoverServersFile] picks the server definitions file in this order:
//
//  1. the --servers flag
//  2. the servers_file key from the application config
//  3. ./.mcp.json in the working directory
//  4. <ConfigHome>/mcpbridge/servers.json
//
// Explicit paths (1 and 2) must exist. The implicit candidates are skipped
// when absent; if none exists the last candidate is returned and the parser
// treats the missing file as "no servers configured".
package paths
