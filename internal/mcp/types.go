package mcp

import (
	"encoding/json"
	"maps"
	"slices"
)

// Server represents a canonical MCP server configuration.
type Server struct {
	// Name is the server's unique identifier.
	// This is typically used as the map key in configuration files.
	Name string `json:"name,omitempty"`

	// Command is the executable to launch. A bare name is resolved against
	// the PATH the child process will see.
	Command string `json:"command"`

	// Args are command-line arguments passed to Command, in order.
	Args []string `json:"args,omitempty"`

	// Env contains environment variable overrides for the server process.
	Env map[string]string `json:"env,omitempty"`

	// Disabled indicates whether the server is temporarily disabled.
	Disabled bool `json:"disabled,omitempty"`

	// unknownFields stores JSON fields not explicitly defined in this struct.
	unknownFields map[string]json.RawMessage
}

// Clone returns a deep copy of the server. Unknown fields are shared.
func (s *Server) Clone() *Server {
	if s == nil {
		return nil
	}
	c := *s
	c.Args = slices.Clone(s.Args)
	if s.Env != nil {
		c.Env = maps.Clone(s.Env)
	}
	return &c
}

// MarshalJSON implements json.Marshaler to include unknown fields in output.
func (s *Server) MarshalJSON() ([]byte, error) {
	result := make(map[string]any, len(s.unknownFields)+5)

	// Known fields take precedence over unknown ones.
	for k, v := range s.unknownFields {
		result[k] = v
	}

	if s.Name != "" {
		result["name"] = s.Name
	}
	result["command"] = s.Command
	if len(s.Args) > 0 {
		result["args"] = s.Args
	}
	if len(s.Env) > 0 {
		result["env"] = s.Env
	}
	if s.Disabled {
		result["disabled"] = s.Disabled
	}

	return json.Marshal(result)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
func (s *Server) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := map[string]any{
		"name":     &s.Name,
		"command":  &s.Command,
		"args":     &s.Args,
		"env":      &s.Env,
		"disabled": &s.Disabled,
	}
	for key, dst := range fields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return err
		}
		delete(raw, key)
	}

	if len(raw) > 0 {
		s.unknownFields = raw
	}
	return nil
}

// Config represents a canonical MCP configuration containing server definitions.
type Config struct {
	// Servers maps server names to their configurations.
	Servers map[string]*Server `json:"servers"`

	// unknownFields stores JSON fields not explicitly defined in this struct.
	unknownFields map[string]json.RawMessage
}

// NewConfig creates a new Config with initialized maps.
func NewConfig() *Config {
	return &Config{
		Servers: make(map[string]*Server),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// Names returns the server names in sorted order.
func (c *Config) Names() []string {
	if c == nil {
		return nil
	}
	return sortedKeys(c.Servers)
}

// Enabled returns the servers that are not disabled, keyed by name.
func (c *Config) Enabled() map[string]*Server {
	out := make(map[string]*Server)
	if c == nil {
		return out
	}
	for name, s := range c.Servers {
		if s != nil && !s.Disabled {
			out[name] = s
		}
	}
	return out
}

// Normalize fills each server's Name from its map key when the entry does
// not carry one.
func (c *Config) Normalize() {
	if c.Servers == nil {
		c.Servers = make(map[string]*Server)
	}
	for name, s := range c.Servers {
		if s != nil && s.Name == "" {
			s.Name = name
		}
	}
}

// MarshalJSON implements json.Marshaler to include unknown fields in output.
func (c *Config) MarshalJSON() ([]byte, error) {
	result := make(map[string]any, len(c.unknownFields)+1)
	for k, v := range c.unknownFields {
		result[k] = v
	}
	result["servers"] = c.Servers
	return json.Marshal(result)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if serversData, ok := raw["servers"]; ok {
		if err := json.Unmarshal(serversData, &c.Servers); err != nil {
			return err
		}
		delete(raw, "servers")
	}

	if len(raw) > 0 {
		c.unknownFields = raw
	}
	return nil
}
