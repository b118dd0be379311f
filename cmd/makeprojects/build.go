// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/makeprojects/makeprojects/internal/artifact"
	"github.com/makeprojects/makeprojects/internal/config"
	"github.com/makeprojects/makeprojects/internal/engine"
	"github.com/makeprojects/makeprojects/internal/issue"
	"github.com/makeprojects/makeprojects/internal/rules"
	"github.com/makeprojects/makeprojects/internal/runtime"

	"github.com/spf13/cobra"
)

const (
	phaseBuild   phaseCommand = "build"
	phaseClean   phaseCommand = "clean"
	phaseRebuild phaseCommand = "rebuild"
)

type (
	// phaseCommand names one of the run commands.
	phaseCommand string

	// runFlags holds the flags shared by build, clean and rebuild.
	runFlags struct {
		recursive      bool
		preview        bool
		fatal          bool
		files          []string
		directories    []string
		configurations []string
		rulesFile      string
		documentation  bool
		report         string
		runtime        string
		watch          bool
		watchIgnore    []string
	}
)

var phaseShort = map[phaseCommand]string{
	phaseBuild:   "Build the projects under the given paths",
	phaseClean:   "Clean the projects under the given paths",
	phaseRebuild: "Clean, then build the projects under the given paths",
}

// newPhaseCommand creates the build, clean or rebuild command.
func newPhaseCommand(app *App, phase phaseCommand) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   string(phase) + " [paths...]",
		Short: phaseShort[phase],
		Long: phaseShort[phase] + `.

Paths may be directories or files. Directories are walked; files are built
with the handler that recognizes them, and rule files run their own entry
points. With no paths the current directory is used.

The exit status is the first failing code: 10 for structural errors
(missing path, unsupported file, missing tool), 11 for a rule file that
failed to load, otherwise the failing tool's own status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhase(cmd, app, phase, flags, args)
		},
	}

	bindRunFlags(cmd, flags)
	return cmd
}

// bindRunFlags registers the run flags on cmd.
func bindRunFlags(cmd *cobra.Command, flags *runFlags) {
	f := cmd.Flags()
	f.BoolVarP(&flags.recursive, "recursive", "r", false, "walk subdirectories")
	f.BoolVarP(&flags.preview, "preview", "n", false, "print the work items without running them")
	f.BoolVarP(&flags.fatal, "fatal", "q", false, "stop at the first failure")
	f.StringArrayVarP(&flags.files, "file", "f", nil, "process a file (repeatable)")
	f.StringArrayVarP(&flags.directories, "directory", "d", nil, "process a directory (repeatable)")
	f.StringArrayVarP(&flags.configurations, "configuration", "c", nil, "configuration to build (repeatable)")
	f.StringVar(&flags.rulesFile, "rules-file", "", "rule file name (default "+rules.DefaultFileName+")")
	f.BoolVar(&flags.documentation, "docs", false, "also run doxygen on Doxyfile")
	f.StringVar(&flags.report, "report", "", "write outcomes to a .json, .yaml or .toml file")
	f.StringVar(&flags.runtime, "runtime", "", "entry point runtime: virtual or native")
	f.BoolVarP(&flags.watch, "watch", "w", false, "run again whenever files under the paths change")
	f.StringArrayVar(&flags.watchIgnore, "watch-ignore", nil, "glob of paths that never trigger a run (repeatable)")
}

// runPhase merges flags over the configuration and runs the phase, once or
// on every change in watch mode.
func runPhase(cmd *cobra.Command, app *App, phase phaseCommand, flags *runFlags, args []string) error {
	ctx := cmd.Context()
	cfg := app.loadConfig(ctx)

	opts, err := phaseOptions(cmd, app, cfg, phase, flags)
	if err != nil {
		app.renderIssue(err)
		return err
	}

	var format engine.ReportFormat
	if flags.report != "" {
		if format, err = engine.ReportFormatFromPath(flags.report); err != nil {
			return err
		}
	}

	roots := classifyArgs(args)
	roots.Files = append(roots.Files, flags.files...)
	roots.Directories = append(roots.Directories, flags.directories...)

	// Each run gets a fresh rule cache so edited rule files are picked up.
	run := func(ctx context.Context) (int, error) {
		cache, err := newRuleCache(cfg, opts.RulesFile)
		if err != nil {
			app.renderIssue(err)
			return 0, err
		}

		sessionOpts := []engine.SessionOption{
			engine.WithCache(cache),
			engine.WithRegistry(artifact.NewDefaultRegistry(artifact.Options{
				Documentation: flags.documentation || (!cmd.Flags().Changed("docs") && cfg.Documentation),
			})),
			engine.WithIO(runtime.IO{
				Stdin:  cmd.InOrStdin(),
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			}),
			engine.WithPreviewWriter(cmd.OutOrStdout()),
		}

		results, err := executePhase(ctx, phase, opts, roots, sessionOpts)
		if err != nil {
			return 0, err
		}

		results.Render(cmd.OutOrStdout(), opts.Verbose, styledTheme{})

		if flags.report != "" {
			if err := writeReport(flags.report, format, results); err != nil {
				return 0, err
			}
		}

		code := results.ExitCode()
		slog.Info("run finished", "run_id", results.RunID(), "phase", phase, "outcomes", results.Len(), "exit_code", code)
		return code, nil
	}

	if flags.watch {
		return watchPhase(ctx, cmd, app, watchTarget{
			phase:     phase,
			roots:     roots,
			recursive: opts.Recursive,
			ignore:    flags.watchIgnore,
		}, run)
	}

	code, err := run(ctx)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func executePhase(ctx context.Context, phase phaseCommand, opts engine.Options, roots engine.Roots, sessionOpts []engine.SessionOption) (*engine.Results, error) {
	if phase == phaseRebuild {
		return engine.Rebuild(ctx, opts, roots, sessionOpts...)
	}
	return engine.Run(ctx, opts, roots, sessionOpts...)
}

// phaseOptions builds the run context. Flags set on the command line win
// over the configuration.
func phaseOptions(cmd *cobra.Command, app *App, cfg *config.Config, phase phaseCommand, flags *runFlags) (engine.Options, error) {
	changed := cmd.Flags().Changed

	opts := engine.Options{
		Phase:             rules.PhaseBuild,
		Recursive:         cfg.Run.Recursive,
		Preview:           flags.preview,
		Fatal:             cfg.Run.Fatal,
		Verbose:           app.verbose,
		Configurations:    cfg.ConfigurationStrings(),
		RulesFile:         string(cfg.RulesFile),
		EntryPointRuntime: runtime.Mode(cfg.EntryPointRuntime),
	}
	if phase == phaseClean {
		opts.Phase = rules.PhaseClean
	}
	if changed("recursive") {
		opts.Recursive = flags.recursive
	}
	if changed("fatal") {
		opts.Fatal = flags.fatal
	}
	if len(flags.configurations) > 0 {
		opts.Configurations = flags.configurations
	}
	if flags.rulesFile != "" {
		if ok, errs := config.RulesFileName(flags.rulesFile).IsValid(); !ok {
			return opts, errors.Join(errs...)
		}
		opts.RulesFile = flags.rulesFile
	}
	if flags.runtime != "" {
		opts.EntryPointRuntime = runtime.Mode(flags.runtime)
	}

	if err := opts.Validate(); err != nil {
		if errors.Is(err, runtime.ErrInvalidMode) {
			return opts, issue.NewErrorContext().
				WithOperation("select entry point runtime").
				WithResource(string(opts.EntryPointRuntime)).
				WithSuggestion("Use --runtime virtual or --runtime native").
				WithIssue(issue.InvalidRuntimeModeId).
				Wrap(err).
				BuildError()
		}
		return opts, err
	}
	return opts, nil
}

// newRuleCache loads the default rule file and returns a fresh cache.
// The configured path wins, then $BUILD_RULES and the standard locations,
// then the builtin rules.
func newRuleCache(cfg *config.Config, fileName string) (*rules.Cache, error) {
	path := cfg.DefaultRules
	if path == "" {
		path = rules.FindDefault()
	}

	def, err := rules.LoadDefault(path)
	if err != nil {
		id := issue.RuleFileParseErrorId
		suggestion := "Fix the rule file or remove default_rules from your config"
		if errors.Is(err, fs.ErrNotExist) {
			id = issue.DefaultRulesNotFoundId
			suggestion = "Run 'makeprojects rules init <dir>' to write a default rule file"
		}
		return nil, issue.NewErrorContext().
			WithOperation("load default rule file").
			WithResource(path).
			WithSuggestion(suggestion).
			WithIssue(id).
			Wrap(err).
			BuildError()
	}
	slog.Debug("default rule file", "path", def.Path())

	return rules.NewCache(fileName, def), nil
}

// classifyArgs splits positional arguments into directories and files.
// Anything that is not an existing directory is treated as a file, so a
// missing path is reported by the walker.
func classifyArgs(args []string) engine.Roots {
	var roots engine.Roots
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			roots.Directories = append(roots.Directories, arg)
			continue
		}
		roots.Files = append(roots.Files, arg)
	}
	return roots
}

// writeReport writes the outcome log to path.
func writeReport(path string, format engine.ReportFormat, results *engine.Results) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", closeErr)
		}
	}()

	if err := results.WriteReport(f, format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	slog.Debug("report written", "path", path, "format", format)
	return nil
}
