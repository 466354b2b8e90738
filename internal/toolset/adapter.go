package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thoreinstein/mcpbridge/internal/errors"
)

// Adapter is a uniform callable for one remote tool. Adapters of the same
// server share its Session.
type Adapter struct {
	session    *Session
	capability Capability
	schema     *jsonschema.Resolved
	logger     *slog.Logger
}

// newAdapter compiles the tool's input schema for local validation. A schema
// the validator cannot compile, such as an older draft, leaves the adapter
// without local validation and the server checks the arguments instead.
func newAdapter(session *Session, capability Capability, logger *slog.Logger) *Adapter {
	schema, err := resolveSchema(capability.InputSchema)
	if err != nil {
		logger.Warn("input schema not validated locally",
			"server", session.Server(), "tool", capability.Name, "error", err)
		schema = nil
	}
	return &Adapter{
		session:    session,
		capability: capability,
		schema:     schema,
		logger:     logger,
	}
}

// Name returns the tool name.
func (a *Adapter) Name() string { return a.capability.Name }

// Description returns the tool description, possibly empty.
func (a *Adapter) Description() string { return a.capability.Description }

// InputSchema returns the tool's JSON Schema as advertised, or nil.
func (a *Adapter) InputSchema() json.RawMessage { return a.capability.InputSchema }

// Server returns the name of the server that owns the tool.
func (a *Adapter) Server() string { return a.session.Server() }

// Capability returns the tool descriptor.
func (a *Adapter) Capability() Capability { return a.capability }

func (a *Adapter) label() string {
	return fmt.Sprintf("MCP tool %q/%q", a.Server(), a.Name())
}

// Invoke validates args against the input schema, calls the tool, and
// returns the concatenated text of the reply.
func (a *Adapter) Invoke(ctx context.Context, args map[string]any) (string, error) {
	a.logger.Info(a.label()+": received input", "args", args)

	normalized, err := a.prepare(args)
	if err != nil {
		return "", toolError(a.Server(), a.Name(), ErrInvalidArguments, err)
	}

	res, err := a.session.callTool(ctx, a.Name(), normalized)
	if err != nil {
		return "", toolError(a.Server(), a.Name(), ErrTransport, err)
	}

	text, ok := flattenText(res.Content)
	if res.IsError {
		if !ok {
			text = rawContent(res.Content)
		}
		return "", toolError(a.Server(), a.Name(), ErrToolExecution, errors.New(text))
	}
	if !ok {
		return "", toolError(a.Server(), a.Name(), ErrResultDecoding,
			errors.Newf("Result content text parsing error: %s", rawContent(res.Content)))
	}

	a.logger.Info(a.label()+": received result", "size", humanize.Bytes(uint64(len(text))))
	return text, nil
}

// Run always fails: a tool call needs a context and a round-trip.
func (a *Adapter) Run(map[string]any) (string, error) {
	return "", toolError(a.Server(), a.Name(), ErrUnsupportedOperation,
		errors.New("synchronous invocation is not supported; use Invoke"))
}

// prepare copies args through JSON so the schema sees wire types, then
// applies schema defaults and validates.
func (a *Adapter) prepare(args map[string]any) (map[string]any, error) {
	normalized := map[string]any{}
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, errors.Wrap(err, "encoding arguments")
		}
		if err := json.Unmarshal(data, &normalized); err != nil {
			return nil, errors.Wrap(err, "decoding arguments")
		}
	}

	if a.schema == nil {
		return normalized, nil
	}
	if err := a.schema.ApplyDefaults(&normalized); err != nil {
		return nil, errors.Wrap(err, "applying defaults")
	}
	if err := a.schema.Validate(normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// flattenText joins all text segments. ok is false if any segment is not
// text.
func flattenText(content []sdkmcp.Content) (text string, ok bool) {
	var b strings.Builder
	for _, c := range content {
		tc, isText := c.(*sdkmcp.TextContent)
		if !isText {
			return "", false
		}
		b.WriteString(tc.Text)
	}
	return b.String(), true
}

func rawContent(content []sdkmcp.Content) string {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Sprintf("%v", content)
	}
	return string(data)
}
