package toolset

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thoreinstein/mcpbridge/internal/errors"
	"github.com/thoreinstein/mcpbridge/internal/mcp"
)

// pathVar is the search-path variable injected into every launch environment.
const pathVar = "PATH"

// Launcher starts one server and returns its raw MCP connection. Launch
// must return once the process is running, before any MCP traffic.
type Launcher interface {
	Launch(ctx context.Context, name string, cfg *mcp.Server) (sdkmcp.Connection, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, name string, cfg *mcp.Server) (sdkmcp.Connection, error)

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context, name string, cfg *mcp.Server) (sdkmcp.Connection, error) {
	return f(ctx, name, cfg)
}

// CommandLauncher launches servers as local subprocesses speaking MCP over
// stdin and stdout.
type CommandLauncher struct {
	// TerminateDuration is how long a server may take to exit after its
	// stdin is closed before it is signalled. Zero uses the SDK default.
	TerminateDuration time.Duration

	// Stderr receives the servers' standard error. Nil discards it.
	Stderr io.Writer

	// LookupEnv reads the parent environment. Nil uses os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Launch starts cfg.Command with exactly the launch environment built by
// [LaunchEnv].
func (l *CommandLauncher) Launch(ctx context.Context, _ string, cfg *mcp.Server) (sdkmcp.Connection, error) {
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	env := LaunchEnv(cfg.Env, lookup)
	path, err := resolveCommand(cfg.Command, env[pathVar])
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(path, cfg.Args...)
	cmd.Env = envList(env)
	cmd.Stderr = l.Stderr

	transport := &sdkmcp.CommandTransport{
		Command:           cmd,
		TerminateDuration: l.TerminateDuration,
	}
	conn, err := transport.Connect(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "starting %s", path)
	}
	return conn, nil
}

// LaunchEnv returns the environment a server process receives: the
// overrides plus PATH. PATH is copied from the parent, or set to "" when the
// parent has none, unless the overrides already name it. An explicit
// override, including "", is kept verbatim.
func LaunchEnv(overrides map[string]string, lookup func(string) (string, bool)) map[string]string {
	env := make(map[string]string, len(overrides)+1)
	for k, v := range overrides {
		env[k] = v
	}
	if _, ok := env[pathVar]; !ok {
		parent, _ := lookup(pathVar)
		env[pathVar] = parent
	}
	return env
}

func envList(env map[string]string) []string {
	list := make([]string, 0, len(env))
	for k, v := range env {
		list = append(list, k+"="+v)
	}
	slices.Sort(list)
	return list
}

// resolveCommand finds a bare command name in the child's search path,
// falling back to the parent's. Names containing a separator are used as
// given.
func resolveCommand(command, searchPath string) (string, error) {
	if command == "" {
		return "", errors.New("no command configured")
	}
	if strings.ContainsRune(command, os.PathSeparator) || strings.ContainsRune(command, '/') {
		return command, nil
	}

	for _, dir := range filepath.SplitList(searchPath) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, command)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	path, err := exec.LookPath(command)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %q", command)
	}
	return path, nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// Transport is the duplex channel to one launched server. It is owned by
// the Session built on it, and closing it more than once is safe.
type Transport struct {
	sdkmcp.Connection

	server string
	once   sync.Once
}

func newTransport(server string, conn sdkmcp.Connection) *Transport {
	return &Transport{Connection: conn, server: server}
}

// Server returns the name of the server this transport is bound to.
func (t *Transport) Server() string {
	return t.server
}

// Close closes the underlying connection. Only the first call reaches the
// connection and reports its error; later calls return nil, so a close
// failure surfaced through the session is not reported again by the
// transport release.
func (t *Transport) Close() error {
	var err error
	t.once.Do(func() {
		err = t.Connection.Close()
	})
	return err
}
