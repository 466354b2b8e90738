package validator

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/mcpbridge/internal/mcp"
)

// Option configures a Validator.
type Option func(*Validator)

// Validator validates canonical MCP configurations before launch.
type Validator struct {
	// allowEmpty permits configs with no servers.
	// Default is false (at least one server required).
	allowEmpty bool

	// lookup resolves ${VAR} references in env values. Nil skips the check.
	lookup mcp.LookupFunc

	// lookPath resolves commands. Nil skips the check.
	lookPath func(file string) (string, error)
}

// New creates a new Validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// WithAllowEmpty configures whether empty configs (no servers) are allowed.
// Default is false, meaning at least one server is required.
func WithAllowEmpty(allow bool) Option {
	return func(v *Validator) {
		v.allowEmpty = allow
	}
}

// WithEnvLookup enables warnings for env references that lookup cannot
// resolve. Pass os.LookupEnv to check against the current environment.
func WithEnvLookup(lookup mcp.LookupFunc) Option {
	return func(v *Validator) {
		v.lookup = lookup
	}
}

// WithCommandCheck enables warnings for bare commands that cannot be found
// on the PATH the server would receive. A nil lookPath uses exec.LookPath.
func WithCommandCheck(lookPath func(string) (string, error)) Option {
	return func(v *Validator) {
		if lookPath == nil {
			lookPath = exec.LookPath
		}
		v.lookPath = lookPath
	}
}

// Validate checks a Config for issues.
// Returns a slice of validation errors/warnings in server-name order, or nil
// if valid. Use [HasErrors] to check if any errors (vs warnings) were found.
func (v *Validator) Validate(cfg *mcp.Config) []*ValidationError {
	if cfg == nil {
		return []*ValidationError{{
			Message:  "config is nil",
			Severity: SeverityError,
		}}
	}

	var errs []*ValidationError

	if len(cfg.Servers) == 0 {
		if !v.allowEmpty {
			errs = append(errs, &ValidationError{
				Message:  "config has no servers",
				Severity: SeverityError,
				Err:      ErrEmptyConfig,
			})
		}
	} else if allDisabled(cfg) {
		errs = append(errs, &ValidationError{
			Message:  "every server is disabled; nothing will be started",
			Severity: SeverityWarning,
			Err:      ErrAllDisabled,
		})
	}

	var unresolved map[string][]string
	if v.lookup != nil {
		unresolved = cfg.UnresolvedEnv(v.lookup)
	}

	for _, name := range cfg.Names() {
		server := cfg.Servers[name]
		if server == nil {
			errs = append(errs, &ValidationError{
				ServerName: name,
				Message:    "server definition is empty",
				Severity:   SeverityError,
				Err:        ErrMissingCommand,
			})
			continue
		}
		errs = append(errs, v.validateServer(name, server)...)
		for _, ref := range unresolved[name] {
			errs = append(errs, &ValidationError{
				ServerName: name,
				Field:      "env",
				Message:    "references unset variable " + ref + "; it will expand to an empty string",
				Severity:   SeverityWarning,
				Err:        ErrUnresolvedEnv,
			})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateServer validates a single server configuration.
func (v *Validator) validateServer(name string, server *mcp.Server) []*ValidationError {
	var errs []*ValidationError

	if server.Name != "" && server.Name != name {
		errs = append(errs, &ValidationError{
			ServerName: name,
			Field:      "name",
			Message:    "name " + server.Name + " differs from key; the key is used",
			Severity:   SeverityWarning,
			Err:        ErrNameMismatch,
		})
	}

	errs = append(errs, v.validateCommand(name, server)...)
	errs = append(errs, v.validateEnv(name, server)...)

	return errs
}

func (v *Validator) validateCommand(name string, server *mcp.Server) []*ValidationError {
	if strings.TrimSpace(server.Command) == "" {
		return []*ValidationError{{
			ServerName: name,
			Field:      "command",
			Message:    "command is required",
			Severity:   SeverityError,
			Err:        ErrMissingCommand,
		}}
	}

	// Only bare names depend on PATH; paths are checked at spawn time.
	if v.lookPath == nil || server.Disabled || strings.ContainsRune(server.Command, filepath.Separator) {
		return nil
	}
	if _, err := v.lookPath(server.Command); err != nil {
		msg := "command " + server.Command + " not found on PATH"
		if p, ok := server.Env["PATH"]; ok {
			msg = "command " + server.Command + " not found; server overrides PATH to " + quote(p)
		}
		return []*ValidationError{{
			ServerName: name,
			Field:      "command",
			Message:    msg,
			Severity:   SeverityWarning,
			Err:        ErrCommandNotFound,
		}}
	}
	return nil
}

// validateEnv validates environment variable keys.
func (v *Validator) validateEnv(name string, server *mcp.Server) []*ValidationError {
	var errs []*ValidationError

	for key := range server.Env {
		switch {
		case key == "":
			errs = append(errs, &ValidationError{
				ServerName: name,
				Field:      "env",
				Message:    "environment variable key cannot be empty",
				Severity:   SeverityError,
				Err:        ErrEmptyEnvKey,
			})
		case strings.ContainsRune(key, '='):
			errs = append(errs, &ValidationError{
				ServerName: name,
				Field:      "env",
				Message:    "environment variable key " + quote(key) + " cannot contain '='",
				Severity:   SeverityError,
				Err:        ErrInvalidEnvKey,
			})
		}
	}

	if p, ok := server.Env["PATH"]; ok && p == "" && !strings.ContainsRune(server.Command, os.PathSeparator) {
		errs = append(errs, &ValidationError{
			ServerName: name,
			Field:      "env",
			Message:    "PATH is explicitly empty; a bare command name may not resolve",
			Severity:   SeverityWarning,
		})
	}

	return errs
}

func allDisabled(cfg *mcp.Config) bool {
	for _, s := range cfg.Servers {
		if s == nil || !s.Disabled {
			return false
		}
	}
	return true
}

func quote(s string) string {
	return `"` + s + `"`
}
