package mcp

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestServer_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		server *Server
	}{
		{
			name:   "minimal server",
			server: &Server{Name: "test", Command: "test-cmd"},
		},
		{
			name: "server with args and env",
			server: &Server{
				Name:    "github",
				Command: "npx",
				Args:    []string{"-y", "@modelcontextprotocol/server-github"},
				Env:     map[string]string{"GITHUB_TOKEN": "${GITHUB_TOKEN}"},
			},
		},
		{
			name:   "disabled server",
			server: &Server{Name: "off", Command: "tool", Disabled: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.server)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var got Server
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			if !reflect.DeepEqual(&got, tt.server) {
				t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", &got, tt.server)
			}
		})
	}
}

func TestServer_UnknownFieldsPreserved(t *testing.T) {
	input := `{"command":"uvx","type":"stdio","cwd":"/srv"}`

	var s Server
	if err := json.Unmarshal([]byte(input), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s.Command != "uvx" {
		t.Errorf("Command = %q, want %q", s.Command, "uvx")
	}

	out, err := json.Marshal(&s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"type":"stdio"`, `"cwd":"/srv"`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestServer_UnmarshalTypeMismatch(t *testing.T) {
	var s Server
	if err := json.Unmarshal([]byte(`{"args":"not-a-list"}`), &s); err == nil {
		t.Error("expected error for args of the wrong type")
	}
}

func TestServer_Clone(t *testing.T) {
	orig := &Server{Name: "a", Command: "a", Args: []string{"x"}, Env: map[string]string{"K": "V"}}
	c := orig.Clone()

	c.Args[0] = "y"
	c.Env["K"] = "changed"

	if orig.Args[0] != "x" || orig.Env["K"] != "V" {
		t.Errorf("Clone shares state with original: %+v", orig)
	}
	if (*Server)(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestConfig_Names(t *testing.T) {
	cfg := NewConfig()
	cfg.Servers["zeta"] = &Server{Command: "z"}
	cfg.Servers["alpha"] = &Server{Command: "a"}
	cfg.Servers["mid"] = &Server{Command: "m"}

	want := []string{"alpha", "mid", "zeta"}
	if got := cfg.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestConfig_EnabledAndNormalize(t *testing.T) {
	cfg := &Config{Servers: map[string]*Server{
		"on":  {Command: "on"},
		"off": {Command: "off", Disabled: true},
	}}
	cfg.Normalize()

	if cfg.Servers["on"].Name != "on" {
		t.Errorf("Normalize did not fill Name: %q", cfg.Servers["on"].Name)
	}

	enabled := cfg.Enabled()
	if _, ok := enabled["off"]; ok {
		t.Error("disabled server returned by Enabled()")
	}
	if len(enabled) != 1 {
		t.Errorf("Enabled() len = %d, want 1", len(enabled))
	}
}

func TestConfig_UnknownFieldsPreserved(t *testing.T) {
	input := `{"servers":{"a":{"command":"a"}},"version":2}`

	var cfg Config
	if err := json.Unmarshal([]byte(input), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	out, err := json.Marshal(&cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), `"version":2`) {
		t.Errorf("output %s lost the unknown field", out)
	}
}

func TestConfig_ExpandEnv(t *testing.T) {
	cfg := NewConfig()
	cfg.Servers["github"] = &Server{
		Command: "npx",
		Env: map[string]string{
			"GITHUB_TOKEN": "${TOKEN}",
			"URL":          "https://$HOST/api",
			"MISSING":      "${NOPE}",
			"PLAIN":        "value",
		},
	}
	lookup := func(key string) (string, bool) {
		switch key {
		case "TOKEN":
			return "ghp_x", true
		case "HOST":
			return "example.com", true
		}
		return "", false
	}

	got := cfg.ExpandEnv(lookup)

	want := map[string]string{
		"GITHUB_TOKEN": "ghp_x",
		"URL":          "https://example.com/api",
		"MISSING":      "",
		"PLAIN":        "value",
	}
	if !reflect.DeepEqual(got.Servers["github"].Env, want) {
		t.Errorf("ExpandEnv() env = %v, want %v", got.Servers["github"].Env, want)
	}
	if cfg.Servers["github"].Env["GITHUB_TOKEN"] != "${TOKEN}" {
		t.Error("ExpandEnv modified the receiver")
	}

	missing := cfg.UnresolvedEnv(lookup)
	if !reflect.DeepEqual(missing, map[string][]string{"github": {"NOPE"}}) {
		t.Errorf("UnresolvedEnv() = %v", missing)
	}
}
