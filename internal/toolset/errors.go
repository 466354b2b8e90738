package toolset

import (
	"fmt"

	"github.com/thoreinstein/mcpbridge/internal/errors"
)

// Error kinds. A [*ServerError] matches exactly one of these via errors.Is.
var (
	// ErrSpawn indicates the server process could not be launched.
	ErrSpawn = errors.New("spawn failed")

	// ErrHandshake indicates MCP initialization or tool listing failed.
	ErrHandshake = errors.New("handshake failed")

	// ErrInvalidArguments indicates call arguments violate the tool's input schema.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrToolExecution indicates the remote tool reported a failure.
	ErrToolExecution = errors.New("tool execution failed")

	// ErrResultDecoding indicates a successful reply could not be reduced to text.
	ErrResultDecoding = errors.New("result decoding failed")

	// ErrUnsupportedOperation indicates a synchronous call on an adapter.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrTransport indicates the session is closed or the call could not be delivered.
	ErrTransport = errors.New("transport failure")

	// ErrNoServers indicates that no enabled server could be initialized.
	ErrNoServers = errors.New("no MCP server could be initialized")

	// ErrAlreadyStarted indicates Initialize was called twice on one Coordinator.
	ErrAlreadyStarted = errors.New("coordinator already initialized")
)

// ServerError is the error type returned for every per-server or per-call
// failure.
type ServerError struct {
	// Server is the name of the server the failure belongs to.
	Server string

	// Tool is the tool name for call failures. Empty for startup failures.
	Tool string

	// Kind is one of the Err* sentinels in this package.
	Kind error

	// Err is the underlying cause. For ErrToolExecution its message is the
	// text returned by the tool.
	Err error
}

func (e *ServerError) Error() string {
	subject := fmt.Sprintf("MCP server %q", e.Server)
	if e.Tool != "" {
		subject = fmt.Sprintf("MCP tool %q/%q", e.Server, e.Tool)
	}
	if e.Err == nil {
		return subject + ": " + e.Kind.Error()
	}
	return subject + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error's kind.
func (e *ServerError) Is(target error) bool {
	return e.Kind == target
}

func serverError(server string, kind, err error) *ServerError {
	return &ServerError{Server: server, Kind: kind, Err: err}
}

func toolError(server, tool string, kind, err error) *ServerError {
	return &ServerError{Server: server, Tool: tool, Kind: kind, Err: err}
}
