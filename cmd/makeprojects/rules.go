// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/makeprojects/makeprojects/internal/issue"
	"github.com/makeprojects/makeprojects/internal/rules"

	"github.com/spf13/cobra"
)

// cascadeFlags lists the flags shown by "rules show" with their defaults.
var cascadeFlags = []struct {
	key string
	def bool
}{
	{rules.KeyGeneric, false},
	{rules.KeyContinue, false},
	{rules.KeyNoRecurse, false},
	{rules.KeyProcessProjectFiles, true},
}

// newRulesCommand creates the `makeprojects rules` command tree.
func newRulesCommand(app *App) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and create rule files",
		Long: `Inspect and create ` + rules.DefaultFileName + ` rule files.

The default rule file is searched in $` + rules.EnvDefaultRules + `, ~/` + rules.DefaultFileName + `,
~/.config/` + rules.DefaultFileName + ` and /etc/` + rules.DefaultFileName + `; the builtin rules are used
when none exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write the default rule file into a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initRules(cmd, app, dirArg(args), force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing rule file")
	rulesCmd.AddCommand(initCmd)

	var showPhase string
	showCmd := &cobra.Command{
		Use:   "show [dir]",
		Short: "Show the rule file cascade of a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRules(cmd, app, dirArg(args), rules.Phase(showPhase))
		},
	}
	showCmd.Flags().StringVar(&showPhase, "phase", string(rules.PhaseBuild), "phase to resolve: build or clean")
	rulesCmd.AddCommand(showCmd)

	var depsPhase string
	depsCmd := &cobra.Command{
		Use:   "deps [dir]",
		Short: "Show the dependency order of a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showDependencies(cmd, app, dirArg(args), rules.Phase(depsPhase))
		},
	}
	depsCmd.Flags().StringVar(&depsPhase, "phase", string(rules.PhaseBuild), "phase to resolve: build or clean")
	rulesCmd.AddCommand(depsCmd)

	return rulesCmd
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func initRules(cmd *cobra.Command, app *App, dir string, force bool) error {
	cfg := app.loadConfig(cmd.Context())

	path, err := rules.WriteDefault(dir, string(cfg.RulesFile), force)
	if err != nil {
		if errors.Is(err, rules.ErrRuleFileExists) {
			return issue.NewErrorContext().
				WithOperation("write rule file").
				WithResource(path).
				WithSuggestion("Use --force to overwrite it").
				Wrap(err).
				BuildError()
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

// newInspectCache builds a rule cache from the configuration for read-only commands.
func newInspectCache(cmd *cobra.Command, app *App, phase rules.Phase) (*rules.Cache, error) {
	if err := phase.Validate(); err != nil {
		return nil, err
	}
	cfg := app.loadConfig(cmd.Context())
	cache, err := newRuleCache(cfg, string(cfg.RulesFile))
	if err != nil {
		app.renderIssue(err)
		return nil, err
	}
	return cache, nil
}

func showRules(cmd *cobra.Command, app *App, dir string, phase rules.Phase) error {
	cache, err := newInspectCache(cmd, app, phase)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	renderCascade(cmd.OutOrStdout(), cache.Resolve(abs, phase))
	return nil
}

// renderCascade prints the cascade, the effective flags, the entry points
// and the declared dependencies.
func renderCascade(w io.Writer, cs *rules.Cascade) {
	fmt.Fprintf(w, "%s %s (%s)\n\n", TitleStyle.Render("Rule cascade for"), cs.Dir, cs.Phase)

	last := len(cs.Files) - 1
	for i, rf := range cs.Files {
		note := ""
		switch {
		case i == last:
			note = SubtitleStyle.Render(" (default)")
		case rf == cs.Leaf:
			note = SubtitleStyle.Render(" (directory)")
		}
		fmt.Fprintf(w, "  %d. %s%s\n", i+1, CmdStyle.Render(rf.Path()), note)
	}

	fmt.Fprintf(w, "\n%s\n", TitleStyle.Render("Flags"))
	for _, flag := range cascadeFlags {
		if flag.key == rules.KeyProcessProjectFiles && cs.Phase != rules.PhaseClean {
			continue
		}
		value, ok := cs.LookupBool(flag.key)
		source := SubtitleStyle.Render(" (default)")
		if ok {
			source = ""
		} else {
			value = flag.def
		}
		fmt.Fprintf(w, "  %s: %v%s\n", CmdStyle.Render(cs.Phase.Key(flag.key)), value, source)
	}

	fmt.Fprintf(w, "\n%s\n", TitleStyle.Render("Entry points"))
	count := 0
	for _, rf := range cs.Files {
		for _, ep := range rf.EntryPoints(cs.Phase) {
			count++
			mode := ep.Runtime.String()
			if mode == "" {
				mode = "default runtime"
			}
			fmt.Fprintf(w, "  %2d %-9s %s %s\n", ep.Priority, ep.Name, rf.Path(), SubtitleStyle.Render("("+mode+")"))
		}
	}
	if count == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none)"))
	}

	var deps []string
	for _, rf := range cs.Files {
		deps = append(deps, rf.Dependencies(cs.Phase)...)
	}
	if len(deps) > 0 {
		fmt.Fprintf(w, "\n%s\n", TitleStyle.Render("Dependencies"))
		for _, dep := range deps {
			fmt.Fprintf(w, "  - %s\n", dep)
		}
	}

	if len(cs.LoadErrors) > 0 {
		fmt.Fprintf(w, "\n%s\n", ErrorStyle.Render("Load errors"))
		for _, le := range cs.LoadErrors {
			fmt.Fprintf(w, "  %s: %v\n", le.Path, le.Err)
		}
	}
}

func showDependencies(cmd *cobra.Command, app *App, dir string, phase rules.Phase) error {
	cache, err := newInspectCache(cmd, app, phase)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	order, err := cache.DependencyGraph(dir, phase).TopologicalSort()
	if err != nil {
		var cycleErr *rules.CycleError
		if errors.As(err, &cycleErr) {
			fmt.Fprintf(w, "%s\n", WarningStyle.Render("Dependency cycle:"))
			for _, node := range cycleErr.Cycle {
				fmt.Fprintf(w, "  - %s\n", node)
			}
			app.renderIssue(issue.NewErrorContext().
				WithOperation("order dependencies").
				WithIssue(issue.DependencyCycleId).
				Wrap(err).
				BuildError())
			return &ExitError{Code: 1, Err: err}
		}
		return err
	}

	fmt.Fprintf(w, "%s\n", TitleStyle.Render("Processing order ("+string(phase)+")"))
	for i, node := range order {
		fmt.Fprintf(w, "  %d. %s\n", i+1, node)
	}
	return nil
}
