// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/makeprojects/makeprojects/internal/artifact"
	"github.com/makeprojects/makeprojects/internal/rules"
	"github.com/makeprojects/makeprojects/internal/runtime"
)

type (
	// Session is the explicit context of one run. It is not safe for
	// concurrent use.
	Session struct {
		opts      Options
		cache     *rules.Cache
		registry  *artifact.Registry
		runtimes  *runtime.Set
		processed *ProcessedSet
		results   *Results
		streams   runtime.IO
		preview   io.Writer

		// executed holds entry points that produced a real outcome.
		executed map[entryKey]bool
		// loadReported holds rule files whose load failure was recorded.
		loadReported map[string]bool
	}

	// SessionOption configures a Session.
	SessionOption func(*Session)
)

// WithCache shares a rule file cache between sessions.
func WithCache(c *rules.Cache) SessionOption {
	return func(s *Session) { s.cache = c }
}

// WithRegistry sets the artifact registry.
func WithRegistry(r *artifact.Registry) SessionOption {
	return func(s *Session) { s.registry = r }
}

// WithRuntimes sets the entry point runtimes.
func WithRuntimes(set *runtime.Set) SessionOption {
	return func(s *Session) { s.runtimes = set }
}

// WithResults appends outcomes to an existing log.
func WithResults(r *Results) SessionOption {
	return func(s *Session) { s.results = r }
}

// WithIO sets the streams handed to entry points and tools.
func WithIO(streams runtime.IO) SessionOption {
	return func(s *Session) { s.streams = streams }
}

// WithPreviewWriter sets where preview mode prints work items.
func WithPreviewWriter(w io.Writer) SessionOption {
	return func(s *Session) { s.preview = w }
}

// NewSession creates a session for opts. Collaborators not provided by
// options get defaults: a fresh cache using the embedded default rule file,
// the built-in artifact handlers, both runtimes and the process streams.
func NewSession(opts Options, options ...SessionOption) *Session {
	s := &Session{
		opts:         opts,
		processed:    NewProcessedSet(),
		executed:     make(map[entryKey]bool),
		loadReported: make(map[string]bool),
		streams:      runtime.StandardIO(),
		preview:      os.Stdout,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.cache == nil {
		s.cache = rules.NewCache(opts.RulesFile, nil)
	}
	if s.registry == nil {
		s.registry = artifact.NewDefaultRegistry(artifact.Options{})
	}
	if s.runtimes == nil {
		s.runtimes = runtime.NewSet()
	}
	if s.results == nil {
		s.results = NewResults()
	}
	return s
}

// Options returns the run context.
func (s *Session) Options() Options { return s.opts }

// Results returns the outcome log.
func (s *Session) Results() *Results { return s.results }

// Processed returns the set of visited paths.
func (s *Session) Processed() *ProcessedSet { return s.processed }

// Cache returns the rule file cache.
func (s *Session) Cache() *rules.Cache { return s.cache }

// Run processes the root files, then the root directories. With no roots
// the current directory is processed. It returns true when the run was
// aborted.
func (s *Session) Run(ctx context.Context, roots Roots) bool {
	if roots.IsEmpty() {
		roots.Directories = []string{"."}
	}
	slog.Debug("starting run",
		"run_id", s.results.RunID(),
		"phase", s.opts.Phase,
		"files", roots.Files,
		"directories", roots.Directories)

	w := NewWalker(s)
	if len(roots.Files) > 0 && w.VisitFiles(ctx, roots.Files) {
		return true
	}
	for _, dir := range roots.Directories {
		if w.VisitDirectory(ctx, dir) {
			return true
		}
	}
	return false
}

// record appends an outcome for the session's phase.
func (s *Session) record(o Outcome) {
	o.Phase = s.opts.Phase
	s.results.Add(o)
}

// recordLoadError records a load failure once per rule file and reports
// whether the run must abort.
func (s *Session) recordLoadError(le *rules.LoadError) bool {
	if s.loadReported[le.Path] {
		return false
	}
	s.loadReported[le.Path] = true
	slog.Warn("rule file failed to load", "path", le.Path, "error", le.Err)
	s.record(Outcome{
		Code:    runtime.ExitLoad,
		Source:  le.Path,
		Message: le.Err.Error(),
	})
	return s.opts.Fatal
}

// recordStructural records a structural failure. Structural failures always
// abort.
func (s *Session) recordStructural(path, format string, args ...any) bool {
	msg := fmt.Sprintf(format, args...)
	slog.Error("structural error", "path", path, "error", msg)
	s.record(Outcome{
		Code:    runtime.ExitStructural,
		Source:  path,
		Message: msg,
	})
	return true
}

// Run executes one phase over roots.
func Run(ctx context.Context, opts Options, roots Roots, options ...SessionOption) (*Results, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := NewSession(opts, options...)
	s.Run(ctx, roots)
	return s.results, nil
}

// Rebuild runs the clean phase and, if it succeeded, the build phase. Both
// phases share the rule file cache and the outcome log; each phase gets its
// own processed set.
func Rebuild(ctx context.Context, opts Options, roots Roots, options ...SessionOption) (*Results, error) {
	opts.Phase = rules.PhaseClean
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	clean := NewSession(opts, options...)
	clean.Run(ctx, roots)
	if clean.results.ExitCode() != 0 || ctx.Err() != nil {
		return clean.results, nil
	}

	opts.Phase = rules.PhaseBuild
	shared := append(options[:len(options):len(options)],
		WithCache(clean.cache),
		WithResults(clean.results))
	build := NewSession(opts, shared...)
	build.Run(ctx, roots)
	return build.results, nil
}
