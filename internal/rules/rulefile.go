// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"path/filepath"

	"cuelang.org/go/cue"

	"github.com/makeprojects/makeprojects/internal/runtime"
	"github.com/makeprojects/makeprojects/pkg/cueutil"
)

type (
	// RuleFile is a loaded, validated rule file. It is immutable after load.
	RuleFile struct {
		path    string
		dir     string
		builtin bool
		value   cue.Value
	}

	// EntryPoint is one phase script declared by a rule file.
	EntryPoint struct {
		// RuleFile is the file declaring the entry point.
		RuleFile *RuleFile
		// Name is the entry point name (prebuild, build, postbuild, clean).
		Name string
		// Priority is the scheduling priority of the entry point.
		Priority int
		// Script is the shell source.
		Script string
		// Runtime is the runtime requested by the rule file, or empty.
		Runtime runtime.Mode
		// Env holds extra environment variables for the script.
		Env map[string]string
	}

	entryPointStruct struct {
		Script  string            `json:"script"`
		Runtime string            `json:"runtime,omitempty"`
		Env     map[string]string `json:"env,omitempty"`
	}
)

// Path returns the canonical path of the rule file. The embedded default
// rule file reports BuiltinPath.
func (rf *RuleFile) Path() string { return rf.path }

// Dir returns the directory containing the rule file. Relative dependency
// paths resolve against it.
func (rf *RuleFile) Dir() string { return rf.dir }

// IsBuiltin reports whether the rule file is the embedded default.
func (rf *RuleFile) IsBuiltin() bool { return rf.builtin }

// Lookup decodes the top-level field name into T. The second return value
// is false when the field is absent or has a different type.
func Lookup[T any](rf *RuleFile, name string) (T, bool) {
	if rf == nil {
		var zero T
		return zero, false
	}
	return cueutil.Lookup[T](rf.value, name)
}

// lookupScoped performs the phase-prefixed lookup followed by the unscoped
// one.
func lookupScoped[T any](rf *RuleFile, phase Phase, key string) (T, bool) {
	if v, ok := Lookup[T](rf, phase.Key(key)); ok {
		return v, true
	}
	return Lookup[T](rf, key)
}

// LookupBool returns the value of a boolean flag for phase, reporting
// whether either the scoped or the unscoped key is set.
func (rf *RuleFile) LookupBool(phase Phase, key string) (value, ok bool) {
	return lookupScoped[bool](rf, phase, key)
}

// Bool returns the value of a boolean flag for phase, or def when unset.
func (rf *RuleFile) Bool(phase Phase, key string, def bool) bool {
	if v, ok := rf.LookupBool(phase, key); ok {
		return v
	}
	return def
}

// EntryPoint returns the entry point declared under name. The priority is
// left zero; use EntryPoints to get phase slots with priorities.
func (rf *RuleFile) EntryPoint(name string) (EntryPoint, bool) {
	if script, ok := Lookup[string](rf, name); ok {
		return EntryPoint{RuleFile: rf, Name: name, Script: script}, true
	}
	if s, ok := Lookup[entryPointStruct](rf, name); ok {
		return EntryPoint{
			RuleFile: rf,
			Name:     name,
			Script:   s.Script,
			Runtime:  runtime.Mode(s.Runtime),
			Env:      s.Env,
		}, true
	}
	return EntryPoint{}, false
}

// EntryPoints returns the entry points the rule file declares for phase,
// in slot order.
func (rf *RuleFile) EntryPoints(phase Phase) []EntryPoint {
	var eps []EntryPoint
	for _, slot := range phase.Slots() {
		ep, ok := rf.EntryPoint(slot.Name)
		if !ok {
			continue
		}
		ep.Priority = slot.Priority
		eps = append(eps, ep)
	}
	return eps
}

// Dependencies returns the dependency paths declared for phase. The value
// may be a single path or a list; relative entries are resolved against the
// rule file's directory.
func (rf *RuleFile) Dependencies(phase Phase) []string {
	raw := rawDependencies(rf, phase)
	deps := make([]string, 0, len(raw))
	for _, dep := range raw {
		if dep == "" {
			continue
		}
		if !filepath.IsAbs(dep) && rf.dir != "" {
			dep = filepath.Join(rf.dir, dep)
		}
		deps = append(deps, filepath.Clean(dep))
	}
	return deps
}

func rawDependencies(rf *RuleFile, phase Phase) []string {
	for _, key := range []string{phase.Key(KeyDependencies), KeyDependencies} {
		if one, ok := Lookup[string](rf, key); ok {
			return []string{one}
		}
		if list, ok := Lookup[[]string](rf, key); ok {
			return list
		}
	}
	return nil
}

// String returns the rule file path.
func (rf *RuleFile) String() string { return rf.path }
