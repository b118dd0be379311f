// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/makeprojects/makeprojects/internal/config"
	"github.com/makeprojects/makeprojects/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `makeprojects config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage makeprojects configuration",
		Long: `Manage makeprojects configuration.

Configuration is stored in:
  - Linux: ~/.config/makeprojects/config.cue
  - macOS: ~/Library/Application Support/makeprojects/config.cue
  - Windows: %APPDATA%\makeprojects\config.cue

Every key can be overridden with a ` + config.EnvPrefix + `_ environment variable,
for example ` + config.EnvPrefix + `_RUN_FATAL=true.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: app.configPath})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: app.configPath})
	if err != nil {
		app.renderIssue(issue.NewErrorContext().
			WithOperation("load configuration").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError())
		return err
	}

	w := cmd.OutOrStdout()
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), configFileLabel(app))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("rules_file"), valueStyle.Render(cfg.RulesFile.String()))
	defaultRules := SubtitleStyle.Render("(search, then builtin)")
	if cfg.DefaultRules != "" {
		defaultRules = valueStyle.Render(cfg.DefaultRules)
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("default_rules"), defaultRules)

	configurations := SubtitleStyle.Render("(tool defaults)")
	if len(cfg.Configurations) > 0 {
		configurations = valueStyle.Render(strings.Join(cfg.ConfigurationStrings(), ", "))
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("configurations"), configurations)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("documentation"), valueStyle.Render(fmt.Sprintf("%v", cfg.Documentation)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("entry_point_runtime"), valueStyle.Render(cfg.EntryPointRuntime.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("run"))
	fmt.Fprintf(w, "  recursive: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Run.Recursive)))
	fmt.Fprintf(w, "  fatal: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Run.Fatal)))

	return nil
}

func initConfig(cmd *cobra.Command) error {
	path, err := config.CreateDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(cmd *cobra.Command) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigFilePath()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "Config file: %s\n", cfgPath)
	return nil
}

// configFileLabel describes where the configuration came from.
func configFileLabel(app *App) string {
	if app.configPath != "" {
		return app.configPath
	}
	path, err := config.ConfigFilePath()
	if err != nil || !fileExists(path) {
		return SubtitleStyle.Render("(using defaults)")
	}
	return path
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
