// Package parser loads canonical MCP server configurations from disk.
// JSON, YAML and TOML files are supported; JSON files may use the
// canonical "servers" wrapper, the "mcpServers" wrapper written by other
// MCP clients, or a bare map of server name to definition.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpbridge/internal/errors"
	"github.com/thoreinstein/mcpbridge/internal/mcp"
	"github.com/thoreinstein/mcpbridge/pkg/fileutil"
)

// Sentinel errors for parser operations.
var (
	// ErrInvalidSyntax indicates the input is not valid for its format.
	ErrInvalidSyntax = errors.New("invalid syntax")

	// ErrInvalidConfig indicates the document doesn't represent a valid MCP config.
	ErrInvalidConfig = errors.New("invalid MCP configuration")

	// ErrUnknownFormat indicates the file extension is not recognized.
	ErrUnknownFormat = errors.New("unknown config format")
)

// Format identifies a server file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension. Files without
// an extension are treated as JSON.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", "":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "extension %q", filepath.Ext(path))
	}
}

// ParseError wraps errors that occur during parsing with path context.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parsing MCP config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("parsing MCP config: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads an MCP config from JSON bytes.
func Parse(data []byte) (*mcp.Config, error) {
	return ParseFormat(data, FormatJSON)
}

// ParseFormat reads an MCP config encoded in the given format. Empty input
// yields an empty config.
func ParseFormat(data []byte, format Format) (*mcp.Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return mcp.NewConfig(), nil
	}

	if format != FormatJSON {
		converted, err := toJSON(data, format)
		if err != nil {
			return nil, err
		}
		data = converted
	}

	cfg, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// toJSON decodes YAML or TOML into a generic document and re-encodes it as
// JSON so a single decoder handles every wrapper shape.
func toJSON(data []byte, format Format) ([]byte, error) {
	var doc map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrapf(ErrInvalidSyntax, "yaml: %v", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrapf(ErrInvalidSyntax, "toml: %v", err)
		}
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	return out, nil
}

func decodeJSON(data []byte) (*mcp.Config, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, errors.Wrapf(ErrInvalidSyntax, "%v at offset %d", err, syntaxErr.Offset)
		}
		return nil, errors.Wrapf(ErrInvalidConfig, "%v", err)
	}

	if _, ok := top["servers"]; ok {
		var cfg mcp.Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "servers: %v", err)
		}
		return &cfg, nil
	}

	body := data
	if wrapped, ok := top["mcpServers"]; ok {
		body = wrapped
	}

	cfg := mcp.NewConfig()
	if err := json.Unmarshal(body, &cfg.Servers); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	return cfg, nil
}

// ParseFile reads an MCP config from a file path, choosing the format from
// the extension.
// Returns an empty config (not error) if the file doesn't exist, following the
// principle that a missing config file means "no servers configured".
func ParseFile(path string) (*mcp.Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return mcp.NewConfig(), nil
		}
		return nil, &ParseError{Path: path, Err: err}
	}

	cfg, err := ParseFormat(data, format)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return cfg, nil
}

// Write encodes a canonical MCP config as indented JSON.
// The output is formatted with 2-space indentation for readability.
func Write(cfg *mcp.Config) ([]byte, error) {
	if cfg == nil {
		cfg = mcp.NewConfig()
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling MCP config")
	}

	// Append newline for POSIX compliance
	data = append(data, '\n')
	return data, nil
}
