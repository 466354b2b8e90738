// Package echoserver provides a small MCP server with predictable tools,
// used by tests and by the echo-server command.
package echoserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Implementation details reported during initialize.
const (
	Name    = "echo-server"
	Version = "1.0.0"
)

// Canned replies.
const (
	PingReply = "pong"
	FailReply = "boom"
)

// Tool names, in registration order.
var ToolNames = []string{"ping", "echo", "greet", "segments", "fail", "image", "fail_image", "env"}

type options struct {
	tools    []string
	extra    int
	pageSize int
}

// Option configures the server.
type Option func(*options)

// WithTools registers only the named tools.
func WithTools(names ...string) Option {
	return func(o *options) {
		o.tools = names
	}
}

// WithExtraTools registers n additional tools named tool_00, tool_01, ...
// Each replies with its own name.
func WithExtraTools(n int) Option {
	return func(o *options) {
		o.extra = n
	}
}

// WithPageSize limits tools/list pages.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// EchoInput is the input of the echo tool.
type EchoInput struct {
	Text string `json:"text"`
}

// GreetInput is the input of the greet tool. Name defaults to "world".
type GreetInput struct {
	Name string `json:"name"`
}

// EnvInput is the input of the env tool.
type EnvInput struct {
	Name string `json:"name"`
}

// New builds the server.
func New(opts ...Option) *mcp.Server {
	o := options{tools: ToolNames}
	for _, opt := range opts {
		opt(&o)
	}

	var serverOpts *mcp.ServerOptions
	if o.pageSize > 0 {
		serverOpts = &mcp.ServerOptions{PageSize: o.pageSize}
	}
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, serverOpts)

	enabled := func(name string) bool { return slices.Contains(o.tools, name) }

	if enabled("ping") {
		mcp.AddTool(server, &mcp.Tool{Name: "ping", Description: "Replies with pong."},
			func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, any, error) {
				return text(PingReply), nil, nil
			})
	}
	if enabled("echo") {
		mcp.AddTool(server, &mcp.Tool{Name: "echo", Description: "Returns its input text."},
			func(_ context.Context, _ *mcp.CallToolRequest, in EchoInput) (*mcp.CallToolResult, any, error) {
				return text(in.Text), nil, nil
			})
	}
	if enabled("greet") {
		mcp.AddTool(server, &mcp.Tool{Name: "greet", Description: "Greets someone.", InputSchema: greetSchema()},
			func(_ context.Context, _ *mcp.CallToolRequest, in GreetInput) (*mcp.CallToolResult, any, error) {
				return text("hello " + in.Name), nil, nil
			})
	}
	if enabled("segments") {
		mcp.AddTool(server, &mcp.Tool{Name: "segments", Description: "Replies with two text segments."},
			func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, any, error) {
				return &mcp.CallToolResult{Content: []mcp.Content{
					&mcp.TextContent{Text: "a"},
					&mcp.TextContent{Text: "b"},
				}}, nil, nil
			})
	}
	if enabled("fail") {
		mcp.AddTool(server, &mcp.Tool{Name: "fail", Description: "Always reports a tool error."},
			func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, any, error) {
				res := text(FailReply)
				res.IsError = true
				return res, nil, nil
			})
	}
	if enabled("image") {
		mcp.AddTool(server, &mcp.Tool{Name: "image", Description: "Replies with an image."},
			func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, any, error) {
				return &mcp.CallToolResult{Content: []mcp.Content{image()}}, nil, nil
			})
	}
	if enabled("fail_image") {
		mcp.AddTool(server, &mcp.Tool{Name: "fail_image", Description: "Reports a tool error with an image payload."},
			func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, any, error) {
				return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{image()}}, nil, nil
			})
	}
	if enabled("env") {
		mcp.AddTool(server, &mcp.Tool{Name: "env", Description: "Reports an environment variable of the server process."},
			func(_ context.Context, _ *mcp.CallToolRequest, in EnvInput) (*mcp.CallToolResult, any, error) {
				v, ok := os.LookupEnv(in.Name)
				if !ok {
					return text("unset"), nil, nil
				}
				return text("set:" + v), nil, nil
			})
	}

	for i := range o.extra {
		name := fmt.Sprintf("tool_%02d", i)
		mcp.AddTool(server, &mcp.Tool{Name: name},
			func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, any, error) {
				return text(name), nil, nil
			})
	}

	return server
}

func greetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name": {Type: "string", Default: json.RawMessage(`"world"`)},
		},
	}
}

func text(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: s}}}
}

func image() *mcp.ImageContent {
	return &mcp.ImageContent{Data: []byte("\x89PNG"), MIMEType: "image/png"}
}

// Run serves over stdin and stdout until the client disconnects.
func Run(ctx context.Context, opts ...Option) error {
	return New(opts...).Run(ctx, &mcp.StdioTransport{})
}
