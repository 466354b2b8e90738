package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func unsetenv(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})

	logger.Info("tool call", "server", "fs", "GITHUB_TOKEN", "ghp_1234567890")

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if parsed["msg"] != "tool call" {
		t.Errorf("msg = %v, want %q", parsed["msg"], "tool call")
	}
	if parsed["server"] != "fs" {
		t.Errorf("server = %v, want %q", parsed["server"], "fs")
	}
	if parsed["GITHUB_TOKEN"] != "****7890" {
		t.Errorf("GITHUB_TOKEN = %v, want masked value", parsed["GITHUB_TOKEN"])
	}
}

func TestNew_UnknownFormatDefaultsToText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: Format("unknown"), Output: &buf})

	logger.Info("test message", "key", "value")

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err == nil {
		t.Error("unknown format should default to text, not JSON")
	}
	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("output missing key=value attribute: %s", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name         string
		configLevel  slog.Level
		logLevel     slog.Level
		shouldAppear bool
	}{
		{"info logged at info level", slog.LevelInfo, slog.LevelInfo, true},
		{"debug not logged at info level", slog.LevelInfo, slog.LevelDebug, false},
		{"info not logged at warn level", slog.LevelWarn, slog.LevelInfo, false},
		{"error logged at warn level", slog.LevelWarn, slog.LevelError, true},
		{"trace logged at trace level", LevelTrace, LevelTrace, true},
		{"trace not logged at debug level", slog.LevelDebug, LevelTrace, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: tt.configLevel, Format: FormatText, Output: &buf})

			logger.Log(context.Background(), tt.logLevel, "test message")

			if hasOutput := buf.Len() > 0; hasOutput != tt.shouldAppear {
				t.Errorf("got output=%v, want %v (output %q)", hasOutput, tt.shouldAppear, buf.String())
			}
		})
	}
}

func TestNewDiscard(t *testing.T) {
	logger := NewDiscard()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should not be enabled at any level")
	}
}

func TestForTest(t *testing.T) {
	logger := ForTest(t)
	if !logger.Enabled(context.Background(), LevelTrace) {
		t.Error("ForTest logger should capture trace messages")
	}
	logger.Info("info from test logger", "test", t.Name())
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      slog.Level
	}{
		{-1, slog.LevelWarn},
		{0, slog.LevelWarn},
		{1, slog.LevelInfo},
		{2, slog.LevelDebug},
		{3, LevelTrace},
		{4, LevelTrace},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})

	ctx := NewContext(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the stored logger")
	}
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("FromContext should fall back to slog.Default()")
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestMultiHandler(t *testing.T) {
	var text, js bytes.Buffer
	h := NewMultiHandler(
		NewHandler(&text, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&js, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	logger := slog.New(h).With("server", "fs")

	logger.Info("connected")
	if text.Len() != 0 {
		t.Errorf("warn-level handler should not receive info: %q", text.String())
	}
	if !strings.Contains(js.String(), `"server":"fs"`) {
		t.Errorf("json handler missing attrs: %q", js.String())
	}

	failing := NewMultiHandler(failingHandler{slog.NewTextHandler(&text, nil)}, slog.NewJSONHandler(&js, nil))
	js.Reset()
	err := failing.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "x", 0))
	if err == nil {
		t.Error("expected the failing handler's error")
	}
	if js.Len() == 0 {
		t.Error("a failing handler must not stop the others")
	}
}
