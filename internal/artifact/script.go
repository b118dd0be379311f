// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"path/filepath"

	"github.com/makeprojects/makeprojects/internal/runtime"
)

// scriptPriorities maps the recognized script names to their priority.
var scriptPriorities = map[string]int{
	"prebuild.sh":    1,
	"custombuild.sh": 40,
	"postbuild.sh":   99,
}

// ScriptHandler runs prebuild.sh, custombuild.sh and postbuild.sh files
// found in a directory during the build phase.
type ScriptHandler struct {
	rt runtime.Runtime
}

// NewScriptHandler creates a ScriptHandler executing scripts with rt.
func NewScriptHandler(rt runtime.Runtime) *ScriptHandler {
	return &ScriptHandler{rt: rt}
}

// Name returns the handler name.
func (h *ScriptHandler) Name() string { return "script" }

// Match reports whether path names one of the recognized scripts.
func (h *ScriptHandler) Match(path string) bool {
	_, ok := scriptPriorities[filepath.Base(path)]
	return ok
}

// BuildActions returns one script action per configuration.
func (h *ScriptHandler) BuildActions(path string, configurations []string, _ bool) []Action {
	priority := scriptPriorities[filepath.Base(path)]
	if len(configurations) == 0 {
		configurations = []string{ConfigurationAll}
	}
	actions := make([]Action, 0, len(configurations))
	for _, cfg := range configurations {
		actions = append(actions, &ScriptAction{
			base:  base{priority: priority, source: path, configuration: cfg},
			phase: "build",
			rt:    h.rt,
		})
	}
	return actions
}

// CleanActions returns a single NotApplicableAction.
func (h *ScriptHandler) CleanActions(path string, _ []string, _ bool) []Action {
	return []Action{&NotApplicableAction{
		base:   base{priority: scriptPriorities[filepath.Base(path)], source: path, configuration: ConfigurationAll},
		reason: "scripts have nothing to clean",
	}}
}
