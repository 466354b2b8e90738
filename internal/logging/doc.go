// Package logging provides structured logging for mcpbridge using slog.
//
// The toolset core only ever receives a *slog.Logger; this package is where
// the CLI decides what that logger looks like: a colorized text handler for
// terminals, JSON for machines, or both through [MultiHandler] when
// --log-file is set. Secret-looking attribute values (env tokens, API keys)
// are masked in both formats.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("starting", "version", "1.0.0")
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging
