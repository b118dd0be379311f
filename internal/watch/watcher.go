// SPDX-License-Identifier: MPL-2.0

// Package watch reruns a phase when files under the watched roots change.
//
// Filesystem events are coalesced over a debounce window so the callback
// fires once per burst of edits. Events produced while the callback runs
// are discarded, so files written by the run itself do not trigger another
// run.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const (
	// defaultDebounce is the quiet period after the last event before a run.
	defaultDebounce = 500 * time.Millisecond
	// settleWindow is how long the watcher must stay quiet after a run
	// before new events count again.
	settleWindow = 100 * time.Millisecond
)

// defaultIgnores lists paths that never trigger a run: VCS metadata, editor
// swap files and the usual build output directories.
var defaultIgnores = []string{
	"**/.git/**",
	"**/.svn/**",
	"**/.hg/**",
	"**/.vs/**",
	"**/bin/**",
	"**/obj/**",
	"**/temp/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

var (
	// ErrInvalidPattern is wrapped by New for a malformed glob.
	ErrInvalidPattern = errors.New("invalid ignore pattern")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are the directories to watch. Empty means the current
		// working directory.
		Roots []string

		// Recursive also watches every non-ignored subdirectory, including
		// ones created later.
		Recursive bool

		// Ignore are extra doublestar patterns, matched against the slash
		// separated path relative to the root that contains it.
		Ignore []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative values use the default.
		Debounce time.Duration

		// OnChange receives the sorted absolute paths that changed. A
		// returned error is logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher monitors the roots and fires OnChange after each burst of
	// changes. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []string
		ignores  []string
		debounce time.Duration
		started  atomic.Bool
	}
)

// Validate checks that every ignore pattern is a valid doublestar glob.
func (c Config) Validate() error {
	var errs []error
	for _, pat := range c.Ignore {
		if pat == "" || !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("%w %q", ErrInvalidPattern, pat))
		}
	}
	return errors.Join(errs...)
}

// New creates a Watcher and registers the roots with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	roots := cfg.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}
	absRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", root, err)
		}
		if !slices.Contains(absRoots, abs) {
			absRoots = append(absRoots, abs)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    absRoots,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: debounce,
	}

	for _, root := range w.roots {
		if err := w.addRoot(root); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				slog.Warn("watch: close after init failure", "error", closeErr)
			}
			return nil, err
		}
	}
	return w, nil
}

// Roots returns the absolute watched roots.
func (w *Watcher) Roots() []string {
	return slices.Clone(w.roots)
}

// Run blocks until ctx is cancelled, dispatching OnChange after each
// debounced burst of events. It returns nil on cancellation and an error
// when the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			slog.Warn("watch: close fsnotify", "error", err)
		}
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.accept(evt) {
				continue
			}
			pending[evt.Name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)

			slog.Debug("watch: change detected", "files", len(changed))
			if w.cfg.OnChange != nil {
				if err := w.cfg.OnChange(ctx, changed); err != nil {
					slog.Warn("watch: run failed", "error", err)
				}
			}
			if err := w.settle(ctx); err != nil {
				return err
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			slog.Warn("watch: fsnotify error", "error", err)
		}
	}
}

// accept filters an event and extends the watch to new directories.
func (w *Watcher) accept(evt fsnotify.Event) bool {
	if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
		return false
	}
	if w.isIgnored(evt.Name) {
		return false
	}
	if w.cfg.Recursive && evt.Has(fsnotify.Create) {
		w.maybeAddDir(evt.Name)
	}
	return true
}

// settle discards the events produced while OnChange ran. It returns once
// no event arrived for settleWindow.
func (w *Watcher) settle(ctx context.Context) error {
	quiet := time.NewTimer(settleWindow)
	defer quiet.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if w.cfg.Recursive && evt.Has(fsnotify.Create) && !w.isIgnored(evt.Name) {
				w.maybeAddDir(evt.Name)
			}
			quiet.Reset(settleWindow)
		case <-quiet.C:
			return nil
		}
	}
}

// addRoot registers root and, when recursive, its non-ignored
// subdirectories.
func (w *Watcher) addRoot(root string) error {
	if !w.cfg.Recursive {
		if err := w.fsw.Add(root); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", root, err)
		}
		return nil
	}

	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Warn("watch: skipping inaccessible path", "path", path, "error", err)
			return nil //nolint:nilerr // inaccessible directories are not watched
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.isIgnored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk %s: %w", root, walkErr)
	}
	return nil
}

// maybeAddDir watches a directory created after startup.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		slog.Warn("watch: add new directory", "path", path, "error", err)
	}
}

// isIgnored matches path, relative to the root containing it, against the
// ignore patterns. A directory also matches patterns ending in "/**".
func (w *Watcher) isIgnored(path string) bool {
	rel, ok := w.relative(path)
	if !ok {
		return false
	}
	return matchAny(w.ignores, rel)
}

// relative returns path relative to the innermost root containing it.
func (w *Watcher) relative(path string) (string, bool) {
	best := ""
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if best == "" || len(rel) < len(best) {
			best = rel
		}
	}
	return best, best != ""
}

func matchAny(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pat, normalized+"/"); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
