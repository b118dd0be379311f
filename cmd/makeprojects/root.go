// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/makeprojects/makeprojects/internal/rules"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "makeprojects",
		Short: "Build, clean and rebuild project trees",
		Long: TitleStyle.Render("makeprojects") + SubtitleStyle.Render(" - Build, clean and rebuild project trees") + `

makeprojects walks a directory tree, runs the entry points declared in
` + rules.DefaultFileName + ` rule files and drives the native build tool of
every project file it finds (make, ninja, msbuild, xcodebuild).

Rule files cascade: a directory's own rule file comes first, then
ancestors marked GENERIC, then the default rule file.

` + SubtitleStyle.Render("Examples:") + `
  makeprojects build              Build the current directory
  makeprojects build -r           Build the whole tree
  makeprojects clean -r -n        Preview a recursive clean
  makeprojects rebuild -c Release Clean, then build Release
  makeprojects rules show         Show the rule file cascade`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.loadConfig(cmd.Context())
			app.setupLogging()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $HOME/.config/makeprojects/config.cue)")

	rootCmd.AddCommand(newPhaseCommand(app, phaseBuild))
	rootCmd.AddCommand(newPhaseCommand(app, phaseClean))
	rootCmd.AddCommand(newPhaseCommand(app, phaseRebuild))
	rootCmd.AddCommand(newRulesCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once.
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
