package toolset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpbridge/internal/logging"
	"github.com/thoreinstein/mcpbridge/internal/mcp"
)

func TestLaunchEnv(t *testing.T) {
	parent := func(key string) (string, bool) {
		if key == "PATH" {
			return "/usr/bin:/bin", true
		}
		return "", false
	}
	noPath := func(string) (string, bool) { return "", false }

	tests := []struct {
		name      string
		overrides map[string]string
		lookup    func(string) (string, bool)
		want      map[string]string
	}{
		{
			name:   "nil overrides get parent PATH",
			lookup: parent,
			want:   map[string]string{"PATH": "/usr/bin:/bin"},
		},
		{
			name:      "overrides kept and PATH added",
			overrides: map[string]string{"TOKEN": "x"},
			lookup:    parent,
			want:      map[string]string{"TOKEN": "x", "PATH": "/usr/bin:/bin"},
		},
		{
			name:      "explicit PATH wins",
			overrides: map[string]string{"PATH": "/opt/bin"},
			lookup:    parent,
			want:      map[string]string{"PATH": "/opt/bin"},
		},
		{
			name:      "explicit empty PATH preserved",
			overrides: map[string]string{"PATH": ""},
			lookup:    parent,
			want:      map[string]string{"PATH": ""},
		},
		{
			name:   "parent without PATH yields empty PATH",
			lookup: noPath,
			want:   map[string]string{"PATH": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LaunchEnv(tt.overrides, tt.lookup))
		})
	}
}

func TestLaunchEnv_DoesNotModifyOverrides(t *testing.T) {
	overrides := map[string]string{"A": "1"}
	_ = LaunchEnv(overrides, os.LookupEnv)
	assert.Equal(t, map[string]string{"A": "1"}, overrides)
}

func TestEnvList(t *testing.T) {
	got := envList(map[string]string{"B": "2", "A": "1", "PATH": ""})
	assert.Equal(t, []string{"A=1", "B=2", "PATH="}, got)
}

func TestResolveCommand(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "my-mcp-server")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755))
	plain := filepath.Join(dir, "not-executable")
	require.NoError(t, os.WriteFile(plain, []byte("data"), 0o644))

	got, err := resolveCommand("my-mcp-server", "/nonexistent"+string(os.PathListSeparator)+dir)
	require.NoError(t, err)
	assert.Equal(t, tool, got)

	got, err = resolveCommand("/abs/path/server", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path/server", got)

	_, err = resolveCommand(filepath.Base(plain), dir)
	assert.Error(t, err, "files without an execute bit are skipped")

	_, err = resolveCommand("", dir)
	assert.Error(t, err)
}

func TestCoordinator_SpawnFailure(t *testing.T) {
	launcher := &CommandLauncher{}
	c := New(logging.ForTest(t), WithLauncher(launcher))

	_, cleanup, err := c.Initialize(t.Context(), map[string]*mcp.Server{
		"missing": {Command: filepath.Join(t.TempDir(), "does-not-exist")},
	})

	require.Error(t, err)
	assert.Nil(t, cleanup)
	assert.ErrorIs(t, err, ErrSpawn)

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "missing", se.Server)
}

func TestCommandLauncher_Subprocess(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Setenv("MCPBRIDGE_NOT_INHERITED", "leak")

	cfgs := map[string]*mcp.Server{
		"inherit":  helperServer(t, nil),
		"empty":    helperServer(t, map[string]string{"PATH": ""}),
		"explicit": helperServer(t, map[string]string{"PATH": "/custom/bin"}),
	}
	launcher := &CommandLauncher{TerminateDuration: 5 * time.Second}

	adapters, cleanup, err := Initialize(ctx, cfgs, logging.ForTest(t), WithLauncher(launcher))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	envTool := map[string]*Adapter{}
	for _, a := range adapters {
		if a.Name() == "env" {
			envTool[a.Server()] = a
		}
	}
	require.Len(t, envTool, 3)

	wantPath := map[string]string{
		"inherit":  "set:" + os.Getenv("PATH"),
		"empty":    "set:",
		"explicit": "set:/custom/bin",
	}
	for server, want := range wantPath {
		got, err := envTool[server].Invoke(ctx, map[string]any{"name": "PATH"})
		require.NoError(t, err, server)
		assert.Equal(t, want, got, server)
	}

	got, err := envTool["inherit"].Invoke(ctx, map[string]any{"name": "MCPBRIDGE_NOT_INHERITED"})
	require.NoError(t, err)
	assert.Equal(t, "unset", got, "only overrides and PATH reach the child")

	got, err = envTool["inherit"].Invoke(ctx, map[string]any{"name": helperEnv})
	require.NoError(t, err)
	assert.Equal(t, "set:1", got)

	require.NoError(t, cleanup())
}

func TestTransport_CloseOnce(t *testing.T) {
	l := newMemLauncher()
	l.closeErr["a"] = errors.New("exit status 3")
	conn, err := l.Launch(t.Context(), "a", nil)
	require.NoError(t, err)

	tr := newTransport("a", conn)
	require.EqualError(t, tr.Close(), "exit status 3")
	assert.NoError(t, tr.Close(), "only the first close reports the error")

	assert.Equal(t, []string{"a"}, l.closes())
	assert.Equal(t, "a", tr.Server())
}
