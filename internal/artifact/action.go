// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/makeprojects/makeprojects/internal/runtime"
)

type (
	// Action is one schedulable unit of work produced by a Handler.
	Action interface {
		// Priority orders the action among the other work of a directory.
		Priority() int
		// Source is the artifact path the action was created from.
		Source() string
		// Configuration is the configuration label.
		Configuration() string
		// Run executes the action.
		Run(ctx context.Context, streams runtime.IO) *runtime.Result
		// String describes the action for previews.
		String() string
	}

	// base holds the fields common to every action.
	base struct {
		priority      int
		source        string
		configuration string
	}

	// ToolAction runs an external tool.
	ToolAction struct {
		base
		Tool   runtime.Tool
		runner *runtime.ToolRunner
	}

	// ScriptAction runs a shell script file.
	ScriptAction struct {
		base
		phase string
		rt    runtime.Runtime
	}

	// NotApplicableAction records that the artifact has nothing to do for
	// the phase.
	NotApplicableAction struct {
		base
		reason string
	}
)

func (b base) Priority() int         { return b.priority }
func (b base) Source() string        { return b.source }
func (b base) Configuration() string { return b.configuration }

// Run spawns the tool after checking it is on PATH.
func (a *ToolAction) Run(ctx context.Context, streams runtime.IO) *runtime.Result {
	return a.runner.Run(ctx, a.Tool, streams)
}

func (a *ToolAction) String() string {
	return a.Tool.String()
}

// Run reads the script file and executes it in the file's directory.
func (a *ScriptAction) Run(ctx context.Context, streams runtime.IO) *runtime.Result {
	body, err := os.ReadFile(a.source)
	if err != nil {
		return runtime.NewErrorResult(1, fmt.Errorf("failed to read script: %w", err))
	}
	dir := filepath.Dir(a.source)
	return a.rt.Run(ctx, runtime.Script{
		Name: a.source,
		Body: string(body),
		Dir:  dir,
		Env: map[string]string{
			"WORKING_DIRECTORY": dir,
			"CONFIGURATION":     a.configuration,
			"PHASE":             a.phase,
			"NOT_APPLICABLE":    strconv.Itoa(runtime.NotApplicableStatus),
		},
	}, streams)
}

func (a *ScriptAction) String() string {
	return "sh " + a.source
}

// Run returns the NotApplicable result without doing anything.
func (a *NotApplicableAction) Run(context.Context, runtime.IO) *runtime.Result {
	return runtime.NewExitCodeResult(runtime.NotApplicable)
}

func (a *NotApplicableAction) String() string {
	return a.reason
}
