// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/makeprojects/makeprojects/internal/engine"
	"github.com/makeprojects/makeprojects/internal/watch"

	"github.com/spf13/cobra"
)

type (
	// watchTarget describes what a watch-mode run observes.
	watchTarget struct {
		phase     phaseCommand
		roots     engine.Roots
		recursive bool
		ignore    []string
	}

	// runFunc performs one run and returns its exit code.
	runFunc func(ctx context.Context) (int, error)
)

// watchPhase runs once, then again after every burst of changes under the
// roots until the context is cancelled.
func watchPhase(ctx context.Context, cmd *cobra.Command, app *App, target watchTarget, run runFunc) error {
	out := cmd.ErrOrStderr()

	report := func(code int, err error) {
		switch {
		case err != nil:
			fmt.Fprintf(out, "%s %s\n", ErrorStyle.Render("✗"), formatErrorForDisplay(err, app.verbose))
		case code != 0:
			fmt.Fprintf(out, "%s %s failed with exit status %d\n", ErrorStyle.Render("✗"), target.phase, code)
		default:
			fmt.Fprintf(out, "%s %s succeeded\n", SuccessStyle.Render("✓"), target.phase)
		}
	}

	w, err := watch.New(watch.Config{
		Roots:     watchRoots(target.roots),
		Recursive: target.recursive,
		Ignore:    target.ignore,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(out, "%s %d file(s) changed, running %s\n", WarningStyle.Render("↻"), len(changed), target.phase)
			report(run(ctx))
			return nil
		},
	})
	if err != nil {
		return err
	}

	report(run(ctx))
	fmt.Fprintln(out, SubtitleStyle.Render("Watching for changes (Ctrl+C to stop)"))
	return w.Run(ctx)
}

// watchRoots returns the directories to watch: the named directories and
// the parents of the named files, or the current directory.
func watchRoots(roots engine.Roots) []string {
	var dirs []string
	add := func(dir string) {
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range roots.Directories {
		add(filepath.Clean(dir))
	}
	for _, file := range roots.Files {
		add(filepath.Dir(file))
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	return dirs
}
