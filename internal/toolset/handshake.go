package toolset

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thoreinstein/mcpbridge/internal/errors"
)

// DefaultToolName is used for tools advertised without a name.
const DefaultToolName = "NO NAME"

// Capability describes one tool advertised by a server.
type Capability struct {
	Name        string
	Description string

	// InputSchema is the JSON Schema document exactly as advertised.
	InputSchema json.RawMessage
}

// Session is an initialized MCP connection to one server.
type Session struct {
	server string
	client *sdkmcp.ClientSession
	ready  atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

// Server returns the server name.
func (s *Session) Server() string {
	return s.server
}

// Ready reports whether the initialize exchange completed and the session
// has not been closed.
func (s *Session) Ready() bool {
	return s.ready.Load()
}

// Close ends the session and its transport. It is safe to call repeatedly.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.ready.Store(false)
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

func (s *Session) callTool(ctx context.Context, name string, args map[string]any) (*sdkmcp.CallToolResult, error) {
	if !s.Ready() {
		return nil, errors.New("session closed")
	}
	return s.client.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
}

// connectedTransport hands an already-launched connection to the SDK
// client, so the handshake runs over the process started in pass one.
type connectedTransport struct {
	conn sdkmcp.Connection
}

func (t connectedTransport) Connect(context.Context) (sdkmcp.Connection, error) {
	return t.conn, nil
}

// handshake initializes a session over t, registers its release, and lists
// the server's tools.
func (c *Coordinator) handshake(ctx context.Context, t *Transport) (*Session, []Capability, error) {
	name := t.Server()
	if c.handshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.handshakeTimeout)
		defer cancel()
	}

	client := sdkmcp.NewClient(c.clientInfo, nil)
	cs, err := client.Connect(ctx, connectedTransport{conn: t}, nil)
	if err != nil {
		return nil, nil, c.handshakeFailed(name, errors.Wrap(err, "initialize"))
	}

	session := &Session{server: name, client: cs}
	session.ready.Store(true)
	c.stack.push(name, "session", func() error {
		err := session.Close()
		c.logger.Info(serverLabel(name) + ": session closed")
		return err
	})
	c.logger.Info(serverLabel(name) + ": connected")

	caps, err := listTools(ctx, cs)
	if err != nil {
		return nil, nil, c.handshakeFailed(name, err)
	}

	c.logger.Info(serverLabel(name)+": tools available", "count", len(caps))
	for _, capability := range caps {
		c.logger.Info("- "+capability.Name, "server", name)
	}
	return session, caps, nil
}

func (c *Coordinator) handshakeFailed(name string, err error) error {
	c.logger.Error(serverLabel(name)+": handshake failed", "error", err)
	return serverError(name, ErrHandshake, err)
}

// listTools follows tools/list pagination until the server stops returning
// a cursor.
func listTools(ctx context.Context, cs *sdkmcp.ClientSession) ([]Capability, error) {
	var caps []Capability
	params := &sdkmcp.ListToolsParams{}
	for {
		res, err := cs.ListTools(ctx, params)
		if err != nil {
			return nil, errors.Wrap(err, "listing tools")
		}
		for _, tool := range res.Tools {
			capability, err := capabilityFromTool(tool)
			if err != nil {
				return nil, err
			}
			caps = append(caps, capability)
		}
		if res.NextCursor == "" {
			return caps, nil
		}
		if res.NextCursor == params.Cursor {
			return nil, errors.Newf("listing tools: server repeated cursor %q", res.NextCursor)
		}
		params = &sdkmcp.ListToolsParams{Cursor: res.NextCursor}
	}
}

func capabilityFromTool(tool *sdkmcp.Tool) (Capability, error) {
	if tool == nil {
		return Capability{}, errors.New("listing tools: null tool entry")
	}
	capability := Capability{Name: tool.Name, Description: tool.Description}
	if capability.Name == "" {
		capability.Name = DefaultToolName
	}

	if tool.InputSchema != nil {
		raw, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return Capability{}, errors.Wrapf(err, "tool %q: encoding input schema", capability.Name)
		}
		if string(raw) != "null" {
			capability.InputSchema = raw
		}
	}
	return capability, nil
}

// resolveSchema compiles a tool's input schema for local validation. A
// missing schema accepts any object.
func resolveSchema(raw json.RawMessage) (*jsonschema.Resolved, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "input schema is not an object")
	}
	// Servers emit a mix of draft identifiers; validation only needs the
	// vocabulary, not the declared dialect.
	delete(doc, "$schema")
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "input schema")
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(normalized, &schema); err != nil {
		return nil, errors.Wrap(err, "parsing input schema")
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, errors.Wrap(err, "resolving input schema")
	}
	return resolved, nil
}
