// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/makeprojects/makeprojects/internal/artifact"
	"github.com/makeprojects/makeprojects/internal/rules"
	"github.com/makeprojects/makeprojects/internal/runtime"
)

// ConfigurationAll is the configuration label passed to entry points.
const ConfigurationAll = "all"

type (
	// Runnable is the executable part of a WorkItem.
	Runnable interface {
		Run(ctx context.Context, streams runtime.IO) *runtime.Result
		String() string
	}

	// WorkItem is one schedulable unit of work.
	WorkItem struct {
		Priority      int
		Source        string
		Configuration string
		Action        Runnable
	}

	// EntryPointAction runs one entry point of a rule file.
	EntryPointAction struct {
		EntryPoint rules.EntryPoint
		Phase      rules.Phase
		// WorkingDirectory is where the script runs.
		WorkingDirectory string
		// DefaultRuntime applies when the entry point requests none.
		DefaultRuntime runtime.Mode
		runtimes       *runtime.Set
	}

	// entryKey identifies an entry point for duplicate suppression.
	entryKey struct {
		rulesFile string
		name      string
	}
)

// String formats the item for previews.
func (w *WorkItem) String() string {
	return fmt.Sprintf("%2d %s (%s): %s", w.Priority, w.Source, w.Configuration, w.Action)
}

func (w *WorkItem) entryKey() (entryKey, bool) {
	ep, ok := w.Action.(*EntryPointAction)
	if !ok {
		return entryKey{}, false
	}
	return ep.key(), true
}

func newArtifactItem(a artifact.Action) *WorkItem {
	return &WorkItem{
		Priority:      a.Priority(),
		Source:        a.Source(),
		Configuration: a.Configuration(),
		Action:        a,
	}
}

func (a *EntryPointAction) key() entryKey {
	return entryKey{rulesFile: a.EntryPoint.RuleFile.Path(), name: a.EntryPoint.Name}
}

// Env returns the variables set for the script, including the entry
// point's own env.
func (a *EntryPointAction) Env() map[string]string {
	env := make(map[string]string, len(a.EntryPoint.Env)+5)
	for k, v := range a.EntryPoint.Env {
		env[k] = v
	}
	env["WORKING_DIRECTORY"] = a.WorkingDirectory
	env["CONFIGURATION"] = ConfigurationAll
	env["PHASE"] = a.Phase.String()
	env["RULES_FILE"] = a.EntryPoint.RuleFile.Path()
	env["NOT_APPLICABLE"] = strconv.Itoa(runtime.NotApplicableStatus)
	return env
}

// Run executes the entry point script in the selected runtime.
func (a *EntryPointAction) Run(ctx context.Context, streams runtime.IO) *runtime.Result {
	mode := a.EntryPoint.Runtime
	if mode == "" {
		mode = a.DefaultRuntime
	}
	rt, err := a.runtimes.Get(mode)
	if err != nil {
		return runtime.NewErrorResult(runtime.ExitStructural, err)
	}
	return rt.Run(ctx, runtime.Script{
		Name: a.EntryPoint.RuleFile.Path() + ":" + a.EntryPoint.Name,
		Body: a.EntryPoint.Script,
		Dir:  a.WorkingDirectory,
		Env:  a.Env(),
	}, streams)
}

func (a *EntryPointAction) String() string {
	return "entry point " + a.EntryPoint.Name
}
