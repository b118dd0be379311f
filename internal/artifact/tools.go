// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"path/filepath"
	"strings"

	"github.com/makeprojects/makeprojects/internal/runtime"
)

// Handler priorities.
const (
	PriorityXcode         = 45
	PriorityProject       = 50
	PriorityDocumentation = 90
)

// Configuration labels used when no configuration filter is given.
const (
	// ConfigurationAll labels a run of the tool's default target.
	ConfigurationAll = "all"
	// ConfigurationDefault labels a run of an IDE project's default
	// configuration.
	ConfigurationDefault = "default"
)

type (
	// argsFunc returns the tool arguments for file (a base name) and
	// configuration ("" for the tool default).
	argsFunc func(file, configuration string, verbose bool) []string

	// ToolHandler drives one external tool.
	ToolHandler struct {
		name         string
		tool         string
		priority     int
		defaultLabel string
		match        func(name string) bool
		build        argsFunc
		clean        argsFunc // nil when the tool cannot clean
		singleAction bool     // ignore the configuration filter
		runner       *runtime.ToolRunner
	}
)

// Name returns the handler name.
func (h *ToolHandler) Name() string { return h.name }

// Tool returns the executable the handler spawns.
func (h *ToolHandler) Tool() string { return h.tool }

// Match reports whether the base name of path is accepted.
func (h *ToolHandler) Match(path string) bool {
	return h.match(filepath.Base(path))
}

// BuildActions returns one tool action per configuration.
func (h *ToolHandler) BuildActions(path string, configurations []string, verbose bool) []Action {
	return h.actions(path, configurations, verbose, h.build)
}

// CleanActions returns one tool action per configuration, or a single
// NotApplicableAction when the tool cannot clean.
func (h *ToolHandler) CleanActions(path string, configurations []string, verbose bool) []Action {
	if h.clean == nil {
		return []Action{&NotApplicableAction{
			base:   base{priority: h.priority, source: path, configuration: ConfigurationAll},
			reason: h.name + " has nothing to clean",
		}}
	}
	return h.actions(path, configurations, verbose, h.clean)
}

func (h *ToolHandler) actions(path string, configurations []string, verbose bool, args argsFunc) []Action {
	dir, file := filepath.Split(path)
	dir = filepath.Clean(dir)

	if len(configurations) == 0 || h.singleAction {
		return []Action{h.action(path, dir, h.defaultLabel, args(file, "", verbose))}
	}
	actions := make([]Action, 0, len(configurations))
	for _, cfg := range configurations {
		actions = append(actions, h.action(path, dir, cfg, args(file, cfg, verbose)))
	}
	return actions
}

func (h *ToolHandler) action(path, dir, label string, args []string) *ToolAction {
	return &ToolAction{
		base:   base{priority: h.priority, source: path, configuration: label},
		Tool:   runtime.Tool{Name: h.tool, Args: args, Dir: dir},
		runner: h.runner,
	}
}

// NewNinjaHandler drives ninja for *.ninja files. A configuration is passed
// as the target.
func NewNinjaHandler(runner *runtime.ToolRunner) *ToolHandler {
	return &ToolHandler{
		name:         "ninja",
		tool:         "ninja",
		priority:     PriorityProject,
		defaultLabel: ConfigurationAll,
		match:        func(name string) bool { return strings.HasSuffix(strings.ToLower(name), ".ninja") },
		build: func(file, cfg string, verbose bool) []string {
			args := []string{"-f", file}
			if verbose {
				args = append(args, "-v")
			}
			if cfg != "" {
				args = append(args, cfg)
			}
			return args
		},
		clean: func(file, _ string, _ bool) []string {
			return []string{"-f", file, "-t", "clean"}
		},
		runner: runner,
	}
}

// NewMakefileHandler drives make for makefile, GNUmakefile and *.mak files.
// A configuration is passed as the target.
func NewMakefileHandler(runner *runtime.ToolRunner) *ToolHandler {
	return &ToolHandler{
		name:         "makefile",
		tool:         "make",
		priority:     PriorityProject,
		defaultLabel: ConfigurationAll,
		match: func(name string) bool {
			lower := strings.ToLower(name)
			return lower == "makefile" || name == "GNUmakefile" || strings.HasSuffix(lower, ".mak")
		},
		build: func(file, cfg string, verbose bool) []string {
			args := []string{"-f", file}
			if !verbose {
				args = append(args, "-s")
			}
			if cfg != "" {
				args = append(args, cfg)
			}
			return args
		},
		clean: func(file, _ string, verbose bool) []string {
			args := []string{"-f", file}
			if !verbose {
				args = append(args, "-s")
			}
			return append(args, "clean")
		},
		runner: runner,
	}
}

// NewVisualStudioHandler drives msbuild for *.sln files.
func NewVisualStudioHandler(runner *runtime.ToolRunner) *ToolHandler {
	msbuild := func(target string) argsFunc {
		return func(file, cfg string, verbose bool) []string {
			args := []string{file, "-t:" + target, "-nologo"}
			if verbose {
				args = append(args, "-v:normal")
			} else {
				args = append(args, "-v:minimal")
			}
			if cfg != "" {
				args = append(args, "-p:Configuration="+cfg)
			}
			return args
		}
	}
	return &ToolHandler{
		name:         "visualstudio",
		tool:         "msbuild",
		priority:     PriorityProject,
		defaultLabel: ConfigurationDefault,
		match:        func(name string) bool { return strings.HasSuffix(strings.ToLower(name), ".sln") },
		build:        msbuild("Build"),
		clean:        msbuild("Clean"),
		runner:       runner,
	}
}

// NewXcodeHandler drives xcodebuild for *.xcodeproj bundle directories.
func NewXcodeHandler(runner *runtime.ToolRunner) *ToolHandler {
	xcodebuild := func(action string) argsFunc {
		return func(file, cfg string, verbose bool) []string {
			args := []string{"-project", file}
			if cfg != "" {
				args = append(args, "-configuration", cfg)
			}
			if !verbose {
				args = append(args, "-quiet")
			}
			return append(args, action)
		}
	}
	return &ToolHandler{
		name:         "xcode",
		tool:         "xcodebuild",
		priority:     PriorityXcode,
		defaultLabel: ConfigurationDefault,
		match:        func(name string) bool { return strings.HasSuffix(name, ".xcodeproj") },
		build:        xcodebuild("build"),
		clean:        xcodebuild("clean"),
		runner:       runner,
	}
}

// NewDoxygenHandler runs doxygen on Doxyfile. Configurations do not apply,
// so a single action is always produced.
func NewDoxygenHandler(runner *runtime.ToolRunner) *ToolHandler {
	return &ToolHandler{
		name:         "doxygen",
		tool:         "doxygen",
		priority:     PriorityDocumentation,
		defaultLabel: ConfigurationAll,
		match:        func(name string) bool { return name == "Doxyfile" },
		build: func(file, _ string, _ bool) []string {
			return []string{file}
		},
		singleAction: true,
		runner:       runner,
	}
}
