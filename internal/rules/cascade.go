// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"log/slog"
	"path/filepath"
)

// Cascade is the ordered list of rule files applying to one directory:
// the directory's own rule file, then GENERIC ancestors nearest first, then
// the default rule file.
type Cascade struct {
	Dir   string
	Phase Phase
	// Leaf is the directory's own rule file, or nil.
	Leaf *RuleFile
	// Files is never empty; the last element is the default rule file.
	Files []*RuleFile
	// LoadErrors lists rule files met during ascent that failed to load.
	LoadErrors []*LoadError
}

// Resolve builds the cascade of dir for phase.
//
// The directory's own rule file is always included. Its CONTINUE flag
// decides whether to ascend. Each ancestor's rule file is included only if
// its GENERIC flag is set, and its CONTINUE flag governs further ascent.
// Directories without a rule file, or with one that fails to load, do not
// stop the ascent. Ascent ends at the filesystem root.
func (c *Cache) Resolve(dir string, phase Phase) *Cascade {
	if canonical, err := Canonical(dir); err == nil {
		dir = canonical
	}
	cs := &Cascade{Dir: dir, Phase: phase}

	current := dir
	leaf := true
	for {
		rf, err := c.ForDir(current)
		if err != nil {
			cs.LoadErrors = append(cs.LoadErrors, asLoadError(filepath.Join(current, c.fileName), err))
		}

		ascend := true
		if rf != nil {
			switch {
			case leaf:
				cs.Leaf = rf
				cs.Files = append(cs.Files, rf)
			case rf.Bool(phase, KeyGeneric, false):
				cs.Files = append(cs.Files, rf)
			}
			ascend = rf.Bool(phase, KeyContinue, false)
		}
		if !ascend {
			break
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
		leaf = false
	}

	cs.Files = append(cs.Files, c.def)
	slog.Debug("resolved rule cascade", "dir", dir, "phase", phase, "files", len(cs.Files))
	return cs
}

// LookupBool returns the first value of the flag found in cascade order.
func (cs *Cascade) LookupBool(key string) (value, ok bool) {
	for _, rf := range cs.Files {
		if v, found := rf.LookupBool(cs.Phase, key); found {
			return v, true
		}
	}
	return false, false
}

// Bool returns the first value of the flag found in cascade order, or def.
func (cs *Cascade) Bool(key string, def bool) bool {
	if v, ok := cs.LookupBool(key); ok {
		return v
	}
	return def
}

// Paths returns the paths of the cascade's rule files in order.
func (cs *Cascade) Paths() []string {
	paths := make([]string, len(cs.Files))
	for i, rf := range cs.Files {
		paths[i] = rf.Path()
	}
	return paths
}
