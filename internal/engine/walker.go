// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/makeprojects/makeprojects/internal/artifact"
	"github.com/makeprojects/makeprojects/internal/rules"
)

// Walker visits directories and files, collecting and scheduling their
// work items.
type Walker struct {
	s     *Session
	sched *Scheduler
}

// NewWalker creates a walker for s.
func NewWalker(s *Session) *Walker {
	return &Walker{s: s, sched: NewScheduler(s)}
}

// VisitDirectory processes dir and, when recursing, its subdirectories
// depth-first. An already visited directory is skipped. It returns true
// when the run must abort.
func (w *Walker) VisitDirectory(ctx context.Context, dir string) bool {
	if canonical, err := rules.Canonical(dir); err == nil {
		dir = canonical
	}
	if !w.s.processed.Admit(dir) {
		slog.Debug("directory already processed", "dir", dir)
		return false
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return w.s.recordStructural(dir, "%s is not a directory", dir)
	}

	phase := w.s.opts.Phase
	cascade := w.s.cache.Resolve(dir, phase)
	for _, le := range cascade.LoadErrors {
		if w.s.recordLoadError(le) {
			return true
		}
	}

	processProjectFiles := true
	if phase == rules.PhaseClean {
		processProjectFiles = cascade.Bool(rules.KeyProcessProjectFiles, true)
	}
	noRecurse := cascade.Bool(rules.KeyNoRecurse, false)

	var items []*WorkItem
	for _, rf := range cascade.Files {
		slog.Debug("using rule file", "dir", dir, "path", rf.Path())
		if w.visitDependencies(ctx, rf.Dependencies(phase)) {
			return true
		}
		items = append(items, w.entryPointItems(rf, dir)...)
	}

	if processProjectFiles {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return w.s.recordStructural(dir, "cannot read directory: %v", err)
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if isDir(entry, full) {
				if h := w.s.registry.Match(full); h != nil {
					items = append(items, w.artifactItems(h, full)...)
					continue
				}
				if w.s.opts.Recursive && !noRecurse {
					if w.VisitDirectory(ctx, full) {
						return true
					}
				}
				continue
			}
			if entry.Name() == w.s.cache.FileName() {
				continue
			}
			if h := w.s.registry.Match(full); h != nil {
				items = append(items, w.artifactItems(h, full)...)
			}
		}
	}

	return w.sched.Run(ctx, items)
}

// VisitFiles processes explicitly named files: rule files contribute their
// entry points and dependencies, other files must be recognized artifacts.
// An unrecognized or missing file is a structural error. It returns true
// when the run must abort.
func (w *Walker) VisitFiles(ctx context.Context, files []string) bool {
	var items []*WorkItem
	for _, file := range files {
		full, err := rules.Canonical(file)
		if err != nil {
			full = file
		}

		if filepath.Base(full) == w.s.cache.FileName() {
			if !w.s.processed.Admit(full) {
				continue
			}
			rf, err := w.s.cache.Get(full)
			if err != nil {
				var le *rules.LoadError
				if !errors.As(err, &le) {
					le = &rules.LoadError{Path: full, Err: err}
				}
				if w.s.recordLoadError(le) {
					return true
				}
				continue
			}
			if rf == nil {
				return w.s.recordStructural(full, "%s does not exist", full)
			}
			if w.visitDependencies(ctx, rf.Dependencies(w.s.opts.Phase)) {
				return true
			}
			items = append(items, w.entryPointItems(rf, rf.Dir())...)
			continue
		}

		h := w.s.registry.Match(full)
		if h == nil {
			return w.s.recordStructural(full, "%q is not supported", full)
		}
		items = append(items, w.artifactItems(h, full)...)
	}
	return w.sched.Run(ctx, items)
}

// visitDependencies processes dependency paths before their owner.
// Directories are visited, files are processed like command line files and
// missing paths are ignored.
func (w *Walker) visitDependencies(ctx context.Context, deps []string) bool {
	for _, dep := range deps {
		info, err := os.Stat(dep)
		switch {
		case err != nil:
			slog.Debug("dependency not found", "path", dep)
		case info.IsDir():
			if w.VisitDirectory(ctx, dep) {
				return true
			}
		default:
			if w.s.processed.Contains(dep) {
				continue
			}
			if w.VisitFiles(ctx, []string{dep}) {
				return true
			}
		}
	}
	return false
}

// entryPointItems creates the phase entry point items of rf. Entry points
// run in the rule file's directory; the embedded default runs in dir.
func (w *Walker) entryPointItems(rf *rules.RuleFile, dir string) []*WorkItem {
	workDir := rf.Dir()
	if rf.IsBuiltin() || workDir == "" {
		workDir = dir
	}
	var items []*WorkItem
	for _, ep := range rf.EntryPoints(w.s.opts.Phase) {
		items = append(items, &WorkItem{
			Priority:      ep.Priority,
			Source:        rf.Path(),
			Configuration: ConfigurationAll,
			Action: &EntryPointAction{
				EntryPoint:       ep,
				Phase:            w.s.opts.Phase,
				WorkingDirectory: workDir,
				DefaultRuntime:   w.s.opts.EntryPointRuntime,
				runtimes:         w.s.runtimes,
			},
		})
	}
	return items
}

// artifactItems asks h for the phase actions of path. A path already
// processed in this run yields nothing.
func (w *Walker) artifactItems(h artifact.Handler, path string) []*WorkItem {
	if !w.s.processed.Admit(path) {
		return nil
	}
	opts := w.s.opts
	var actions []artifact.Action
	if opts.Phase == rules.PhaseClean {
		actions = h.CleanActions(path, opts.Configurations, opts.Verbose)
	} else {
		actions = h.BuildActions(path, opts.Configurations, opts.Verbose)
	}
	items := make([]*WorkItem, 0, len(actions))
	for _, a := range actions {
		items = append(items, newArtifactItem(a))
	}
	return items
}

func isDir(entry os.DirEntry, full string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}
