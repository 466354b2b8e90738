package toolset

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thoreinstein/mcpbridge/internal/errors"
	"github.com/thoreinstein/mcpbridge/internal/logging"
	"github.com/thoreinstein/mcpbridge/internal/mcp"
	"github.com/thoreinstein/mcpbridge/internal/redact"
)

// Policy decides what a single server's startup failure does to the rest.
type Policy int

const (
	// PolicyStrict aborts initialization on the first failing server.
	PolicyStrict Policy = iota

	// PolicyIsolate drops failing servers and keeps the rest.
	PolicyIsolate
)

func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyIsolate:
		return "isolate"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts "strict" or "isolate" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return PolicyStrict, nil
	case "isolate":
		return PolicyIsolate, nil
	default:
		return PolicyStrict, errors.Newf("unknown policy %q (valid: strict, isolate)", s)
	}
}

// Default client identity sent during initialize.
const (
	DefaultClientName    = "mcpbridge"
	DefaultClientVersion = "dev"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLauncher replaces the subprocess launcher.
func WithLauncher(l Launcher) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.launcher = l
		}
	}
}

// WithPolicy sets the startup failure policy. Default is PolicyStrict.
func WithPolicy(p Policy) Option {
	return func(c *Coordinator) {
		c.policy = p
	}
}

// WithHandshakeTimeout bounds each server's initialize and tools/list
// exchange. Zero, the default, leaves only the caller's context.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.handshakeTimeout = d
	}
}

// WithClientInfo sets the client implementation reported to servers.
func WithClientInfo(name, version string) Option {
	return func(c *Coordinator) {
		c.clientInfo = &sdkmcp.Implementation{Name: name, Version: version}
	}
}

// Coordinator owns the lifecycle of one set of servers. It initializes at
// most once.
type Coordinator struct {
	logger           *slog.Logger
	launcher         Launcher
	policy           Policy
	handshakeTimeout time.Duration
	clientInfo       *sdkmcp.Implementation

	stack   *releaseStack
	cleanup CleanupFunc

	mu       sync.Mutex
	started  bool
	aborted  bool
	cancel   context.CancelFunc
	failures []error
}

// New creates a Coordinator. A nil logger discards output.
func New(logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	c := &Coordinator{
		logger:     logger,
		launcher:   &CommandLauncher{},
		policy:     PolicyStrict,
		clientInfo: &sdkmcp.Implementation{Name: DefaultClientName, Version: DefaultClientVersion},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stack = newReleaseStack(logger)
	c.cleanup = sync.OnceValue(c.stack.unwind)
	return c
}

// Initialize is shorthand for New(logger, opts...).Initialize(ctx, servers).
func Initialize(ctx context.Context, servers map[string]*mcp.Server, logger *slog.Logger, opts ...Option) ([]*Adapter, CleanupFunc, error) {
	return New(logger, opts...).Initialize(ctx, servers)
}

type launched struct {
	name      string
	transport *Transport
}

// Initialize launches every enabled server, then handshakes each one and
// returns the adapters of all servers that came up together with the
// function that releases them. On error everything acquired has already
// been released.
func (c *Coordinator) Initialize(ctx context.Context, servers map[string]*mcp.Server) ([]*Adapter, CleanupFunc, error) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil, nil, ErrAlreadyStarted
	}
	c.started = true
	if c.aborted {
		c.mu.Unlock()
		return nil, nil, errors.Wrap(context.Canceled, "initialization aborted")
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	names := slices.Sorted(maps.Keys(servers))

	// Pass one: launch every process without waiting for it to boot.
	var started []launched
	enabled := 0
	for _, name := range names {
		cfg := servers[name]
		if cfg != nil && cfg.Disabled {
			c.logger.Debug(serverLabel(name) + ": disabled, skipping")
			continue
		}
		enabled++
		if err := c.interrupted(ctx); err != nil {
			return c.abandon(err)
		}

		t, err := c.spawn(ctx, name, cfg)
		if err != nil {
			if c.policy == PolicyStrict {
				return c.abandon(err)
			}
			c.isolate(name, err)
			continue
		}
		started = append(started, launched{name: name, transport: t})
	}

	// Pass two: handshake in server order.
	var adapters []*Adapter
	up := 0
	for _, l := range started {
		if err := c.interrupted(ctx); err != nil {
			return c.abandon(err)
		}

		serverAdapters, err := c.connect(ctx, l.transport)
		if err != nil {
			if c.policy == PolicyStrict {
				return c.abandon(err)
			}
			c.isolate(l.name, err)
			continue
		}
		up++
		adapters = append(adapters, serverAdapters...)
	}

	if err := c.interrupted(ctx); err != nil {
		return c.abandon(err)
	}
	if enabled > 0 && up == 0 {
		return c.abandon(errors.Join(append([]error{ErrNoServers}, c.Failures()...)...))
	}

	c.logger.Info(fmt.Sprintf("MCP servers initialized: %d tool(s) available in total", len(adapters)))
	for _, a := range adapters {
		c.logger.Debug("- "+a.Name(), "server", a.Server())
	}

	if adapters == nil {
		adapters = []*Adapter{}
	}
	return adapters, c.cleanup, nil
}

// spawn launches one server and registers its transport for release.
func (c *Coordinator) spawn(ctx context.Context, name string, cfg *mcp.Server) (*Transport, error) {
	if cfg == nil {
		err := serverError(name, ErrSpawn, errors.New("empty server definition"))
		c.logger.Error(serverLabel(name)+": launch failed", "error", err)
		return nil, err
	}

	c.logger.Info(serverLabel(name)+": initializing",
		"command", cfg.Command,
		"args", redact.Args(cfg.Args),
		"env", redact.Env(cfg.Env),
	)

	conn, err := c.launcher.Launch(ctx, name, cfg)
	if err != nil {
		err = serverError(name, ErrSpawn, err)
		c.logger.Error(serverLabel(name)+": launch failed", "error", err)
		return nil, err
	}

	t := newTransport(name, conn)
	c.stack.push(name, "transport", func() error {
		err := t.Close()
		c.logger.Debug(serverLabel(name) + ": transport closed")
		return err
	})
	return t, nil
}

// connect runs the handshake and builds the server's adapters.
func (c *Coordinator) connect(ctx context.Context, t *Transport) ([]*Adapter, error) {
	session, caps, err := c.handshake(ctx, t)
	if err != nil {
		return nil, err
	}

	adapters := make([]*Adapter, 0, len(caps))
	for _, capability := range caps {
		adapters = append(adapters, newAdapter(session, capability, c.logger))
	}
	return adapters, nil
}

// isolate records a failure and releases only that server's resources.
func (c *Coordinator) isolate(name string, err error) {
	c.mu.Lock()
	c.failures = append(c.failures, err)
	c.mu.Unlock()

	c.logger.Warn(serverLabel(name)+": dropped", "error", err)
	// Release errors are logged by the stack.
	_ = c.stack.drop(name)
}

// abandon releases everything and returns err with any release errors.
func (c *Coordinator) abandon(err error) ([]*Adapter, CleanupFunc, error) {
	if cleanupErr := c.cleanup(); cleanupErr != nil {
		err = errors.Join(err, cleanupErr)
	}
	return nil, nil, err
}

func (c *Coordinator) interrupted(ctx context.Context) error {
	if c.stack.isUnwound() {
		return errors.Wrap(context.Canceled, "initialization aborted")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "initialization interrupted")
	}
	return nil
}

// Abort cancels an in-flight Initialize and releases everything acquired,
// in reverse order. Resources acquired after Abort are released at once.
// It may be called from any goroutine and returns the release result.
func (c *Coordinator) Abort() error {
	c.mu.Lock()
	c.aborted = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return c.cleanup()
}

// Failures returns the errors of servers dropped under PolicyIsolate.
func (c *Coordinator) Failures() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.failures)
}

func serverLabel(name string) string {
	return fmt.Sprintf("MCP server %q", name)
}
