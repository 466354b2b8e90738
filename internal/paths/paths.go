package paths

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName names the application directory under ConfigHome.
const AppName = "mcpbridge"

const (
	// ProjectServersFile is the server file looked up in the working directory.
	ProjectServersFile = ".mcp.json"

	// GlobalServersFile is the server file name inside AppConfigDir.
	GlobalServersFile = "servers.json"
)

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrServersFileNotFound indicates an explicitly named server file is missing.
	ErrServersFileNotFound = errors.New("servers file not found")
)

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// AppConfigDir returns <ConfigHome>/mcpbridge.
func AppConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// DefaultServersFile returns <ConfigHome>/mcpbridge/servers.json.
func DefaultServersFile() string {
	return filepath.Join(AppConfigDir(), GlobalServersFile)
}

// DiscoverServersFile resolves the server definitions file. explicit is the
// command-line value and configured the application config value; either
// may be empty.
func DiscoverServersFile(explicit, configured string) (string, error) {
	for _, p := range []string{explicit, configured} {
		if p == "" {
			continue
		}
		resolved, err := ExpandHome(p)
		if err != nil {
			return "", err
		}
		if !exists(resolved) {
			return "", errors.Wrapf(ErrServersFileNotFound, "%s", resolved)
		}
		return resolved, nil
	}

	if exists(ProjectServersFile) {
		return ProjectServersFile, nil
	}
	return DefaultServersFile(), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
