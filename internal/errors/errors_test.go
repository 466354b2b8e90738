package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNotFound, ExitUser),
			want: "resource not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("loading servers: %w", ErrInvalidConfig), ExitUser),
			want: "loading servers: invalid configuration",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUser),
			want: "exit code 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_As(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantAs   bool
	}{
		{
			name:     "direct ExitError",
			err:      NewExitError(ErrNotFound, ExitUser),
			wantCode: ExitUser,
			wantAs:   true,
		},
		{
			name:     "wrapped ExitError",
			err:      Wrap(NewSystemError(ErrInvalidConfig, "check logs"), "running command"),
			wantCode: ExitSystem,
			wantAs:   true,
		},
		{
			name:   "non-ExitError",
			err:    ErrNotFound,
			wantAs: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exitErr *ExitError
			gotAs := errors.As(tt.err, &exitErr)
			if gotAs != tt.wantAs {
				t.Fatalf("errors.As() = %v, want %v", gotAs, tt.wantAs)
			}
			if gotAs && exitErr.Code != tt.wantCode {
				t.Errorf("ExitError.Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
		})
	}
}

func TestErrorWrappingChain(t *testing.T) {
	wrapped := Wrapf(ErrAmbiguousTool, "resolving %q", "ping")
	exitErr := NewUserError(wrapped, "qualify the tool as server/tool")

	if !Is(exitErr, ErrAmbiguousTool) {
		t.Error("Is() should find ErrAmbiguousTool through the wrapping chain")
	}
	if !errors.Is(exitErr, ErrAmbiguousTool) {
		t.Error("stdlib errors.Is() should find ErrAmbiguousTool through the wrapping chain")
	}

	want := `resolving "ping": ambiguous tool name`
	if got := exitErr.Error(); got != want {
		t.Errorf("ExitError.Error() = %q, want %q", got, want)
	}
	if exitErr.Suggestion != "qualify the tool as server/tool" {
		t.Errorf("Suggestion = %q", exitErr.Suggestion)
	}
}

func TestJoin(t *testing.T) {
	joined := Join(ErrNotFound, ErrInvalidConfig)
	if !errors.Is(joined, ErrNotFound) || !errors.Is(joined, ErrInvalidConfig) {
		t.Errorf("Join() lost a member: %v", joined)
	}
}

func TestNewConfigError(t *testing.T) {
	e := NewConfigError(errors.New("config error"))
	if e.Code != ExitUser {
		t.Errorf("Code = %d, want %d", e.Code, ExitUser)
	}
	if e.Suggestion != "Run: mcpbridge validate" {
		t.Errorf("Suggestion = %q, want 'Run: mcpbridge validate'", e.Suggestion)
	}
}
