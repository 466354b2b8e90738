package toolset

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/thoreinstein/mcpbridge/internal/errors"
)

// CleanupFunc releases every resource acquired by one coordinator, in
// reverse acquisition order. Calls after the first return the first result.
type CleanupFunc func() error

type release struct {
	server string
	what   string
	fn     func() error
}

// releaseStack records acquisitions in order. All pushes happen on the
// coordinating goroutine; the mutex only lets Abort unwind from another one.
type releaseStack struct {
	logger *slog.Logger

	mu      sync.Mutex
	items   []release
	unwound bool
}

func newReleaseStack(logger *slog.Logger) *releaseStack {
	return &releaseStack{logger: logger}
}

// push registers fn. Once the stack has been unwound, fn runs immediately
// so late acquisitions are never leaked.
func (s *releaseStack) push(server, what string, fn func() error) {
	s.mu.Lock()
	if !s.unwound {
		s.items = append(s.items, release{server: server, what: what, fn: fn})
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	_ = s.run(release{server: server, what: what, fn: fn})
}

// unwind releases everything in reverse order and marks the stack closed.
func (s *releaseStack) unwind() error {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.unwound = true
	s.mu.Unlock()

	s.logger.Debug("releasing MCP resources", "count", len(items))

	var errs []error
	for _, r := range slices.Backward(items) {
		if err := s.run(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// drop releases, in reverse order, only the entries acquired for server.
func (s *releaseStack) drop(server string) error {
	s.mu.Lock()
	var mine []release
	kept := s.items[:0]
	for _, r := range s.items {
		if r.server == server {
			mine = append(mine, r)
		} else {
			kept = append(kept, r)
		}
	}
	s.items = kept
	s.mu.Unlock()

	var errs []error
	for _, r := range slices.Backward(mine) {
		if err := s.run(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *releaseStack) run(r release) error {
	if err := r.fn(); err != nil {
		s.logger.Error("MCP server \""+r.server+"\": failed to release "+r.what, "error", err)
		return errors.Wrapf(err, "releasing %s of %q", r.what, r.server)
	}
	return nil
}

// pending reports how many releases are still registered.
func (s *releaseStack) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *releaseStack) isUnwound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unwound
}
