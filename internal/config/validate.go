package config

import (
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/mcpbridge/internal/errors"
)

// Policies accepted by the policy key.
var Policies = []string{"strict", "isolate"}

// Validation errors for configuration fields.
var (
	// ErrInvalidPolicy indicates an unrecognized policy name.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrNegativeDuration indicates a timeout below zero.
	ErrNegativeDuration = errors.New("duration must not be negative")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if !slices.Contains(Policies, cfg.Policy) {
		errs = append(errs, &FieldError{
			Field: KeyPolicy,
			Value: cfg.Policy,
			Err:   ErrInvalidPolicy,
		})
	}

	for field, d := range map[string]time.Duration{
		KeyHandshakeTimeout: cfg.HandshakeTimeout,
		KeyTerminateTimeout: cfg.TerminateTimeout,
	} {
		if d < 0 {
			errs = append(errs, &FieldError{Field: field, Value: d.String(), Err: ErrNegativeDuration})
		}
	}

	if strings.ContainsRune(cfg.ServersFile, '\x00') {
		errs = append(errs, &FieldError{Field: KeyServersFile, Value: cfg.ServersFile, Err: ErrInvalidPath})
	}

	slices.SortFunc(errs, func(a, b error) int { return strings.Compare(a.Error(), b.Error()) })
	return errs
}

// FieldError represents an error for a specific config key.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
