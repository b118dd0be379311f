// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/makeprojects/makeprojects/internal/config"
	"github.com/makeprojects/makeprojects/internal/issue"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: all Cobra command handlers receive an App reference.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer

		// configPath is the explicit --config flag value.
		configPath string
		// verbose is the --verbose flag value.
		verbose bool
		// cfg is the configuration loaded by the root pre-run hook.
		cfg *config.Config
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// loadConfig loads the configuration once per invocation. A broken config
// file is reported as a warning and the defaults are used.
func (a *App) loadConfig(ctx context.Context) *config.Config {
	if a.cfg != nil {
		return a.cfg
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.verbose))
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg

	// Apply verbose from config if not set via flag
	if !a.verbose {
		a.verbose = cfg.UI.Verbose
	}
	return a.cfg
}

// setupLogging installs charmbracelet/log as the slog handler. Verbose
// output lowers the level to debug.
func (a *App) setupLogging() {
	level := log.WarnLevel
	if a.verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(a.stderr, log.Options{
		Level:  level,
		Prefix: config.AppName,
	})
	slog.SetDefault(slog.New(logger))
}

// renderIssue prints the long-form help linked to an actionable error.
func (a *App) renderIssue(err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.IssueId == 0 {
		return
	}
	scheme := config.ColorSchemeAuto
	if a.cfg != nil {
		scheme = a.cfg.UI.ColorScheme
	}
	rendered, renderErr := ae.Help(glamourStyle(scheme))
	if renderErr != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", ae.IssueId, "error", renderErr)
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
