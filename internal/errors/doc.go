// Package errors provides error handling conventions for the mcpbridge CLI.
//
// It re-exports the wrapping helpers from github.com/cockroachdb/errors so
// callers need a single import, and defines sentinel errors, an ExitError
// type for CLI exit code handling, and exit code constants following
// standard Unix conventions.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found case
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, tool failure)
//   - ExitSystem (2): System-related error (I/O, process launch, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional suggestion:
//
//	err := errors.NewUserError(errors.ErrInvalidConfig, "Check your servers file")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Println("Suggestion:", exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
package errors
