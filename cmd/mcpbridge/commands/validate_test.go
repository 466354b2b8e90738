package commands

import (
	"bytes"
	"os/exec"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpbridge/internal/errors"
	"github.com/thoreinstein/mcpbridge/internal/mcp"
)

func foundEverywhere(file string) (string, error) {
	return "/usr/bin/" + file, nil
}

func TestValidateWithWriter(t *testing.T) {
	tests := []struct {
		name       string
		servers    map[string]*mcp.Server
		wantErr    bool
		wantOutput []string
	}{
		{
			name:       "valid",
			servers:    map[string]*mcp.Server{"fs": {Name: "fs", Command: "mcp-fs"}},
			wantOutput: []string{"is valid (1 server(s))"},
		},
		{
			name:       "missing command",
			servers:    map[string]*mcp.Server{"fs": {Name: "fs"}},
			wantErr:    true,
			wantOutput: []string{"fs.command", "command is required"},
		},
		{
			name: "warnings only",
			servers: map[string]*mcp.Server{
				"fs": {Name: "fs", Command: "mcp-fs", Disabled: true},
			},
			wantOutput: []string{"disabled", "is valid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mcp.NewConfig()
			cfg.Servers = tt.servers

			var buf bytes.Buffer
			err := validateWithWriter(&buf, cfg, "servers.json", foundEverywhere)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateWithWriter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var exitErr *errors.ExitError
				if !errors.As(err, &exitErr) || exitErr.Code != errors.ExitUser {
					t.Errorf("error = %v, want user ExitError", err)
				}
			}
			for _, want := range tt.wantOutput {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestValidateWithWriter_CommandNotFound(t *testing.T) {
	cfg := mcp.NewConfig()
	cfg.Servers["fs"] = &mcp.Server{Name: "fs", Command: "definitely-not-installed"}

	notFound := func(string) (string, error) { return "", exec.ErrNotFound }

	var buf bytes.Buffer
	if err := validateWithWriter(&buf, cfg, "servers.json", notFound); err != nil {
		t.Fatalf("a missing command is a warning, got error %v", err)
	}
	if !strings.Contains(buf.String(), "definitely-not-installed") {
		t.Errorf("output should name the command:\n%s", buf.String())
	}
}

func TestValidate_CLIEmptyFile(t *testing.T) {
	path := writeServers(t, `{}`)

	if _, err := runCLI(t, "--servers", path, "validate"); err == nil {
		t.Error("validate should fail on a file with no servers")
	}
	if _, err := runCLI(t, "--servers", path, "validate", "--allow-empty"); err != nil {
		t.Errorf("validate --allow-empty error = %v", err)
	}
}

func TestValidate_CLIJSON(t *testing.T) {
	path := writeServers(t, `{"mcpServers": {"fs": {"command": "/bin/sh"}}}`)

	out, err := runCLI(t, "--servers", path, "validate", "--json")
	if err != nil {
		t.Fatalf("validate --json error = %v", err)
	}
	if !strings.Contains(out, `"valid": true`) {
		t.Errorf("unexpected report:\n%s", out)
	}
}
