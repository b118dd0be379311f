// SPDX-License-Identifier: MPL-2.0

package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"sync"
)

const (
	// DefaultFileName is the rule file name looked up in every directory.
	DefaultFileName = "build_rules.cue"
	// EnvDefaultRules names a default rule file that overrides the search.
	EnvDefaultRules = "BUILD_RULES"
	// BuiltinPath is the path reported by the embedded default rule file.
	BuiltinPath = "<builtin>/" + DefaultFileName
)

// ErrRuleFileExists is returned by WriteDefault when the target exists.
var ErrRuleFileExists = errors.New("rule file already exists")

//go:embed default_rules.cue
var defaultRules []byte

var builtin = sync.OnceValues(func() (*RuleFile, error) {
	rf, err := parse(BuiltinPath, "", defaultRules)
	if err != nil {
		return nil, err
	}
	rf.builtin = true
	return rf, nil
})

// DefaultRules returns the source of the embedded default rule file.
func DefaultRules() []byte {
	return slices.Clone(defaultRules)
}

// Builtin returns the embedded default rule file.
func Builtin() *RuleFile {
	rf, err := builtin()
	if err != nil {
		panic(fmt.Sprintf("embedded default rule file is invalid: %v", err))
	}
	return rf
}

// FindDefault returns the path of the user default rule file, or "" when
// the embedded default applies. The search order is $BUILD_RULES,
// ~/build_rules.cue, ~/.config/build_rules.cue and, outside Windows,
// /etc/build_rules.cue.
func FindDefault() string {
	if p := os.Getenv(EnvDefaultRules); p != "" && isFile(p) {
		return p
	}
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, DefaultFileName),
			filepath.Join(home, ".config", DefaultFileName))
	}
	if goruntime.GOOS != "windows" {
		candidates = append(candidates, filepath.Join("/etc", DefaultFileName))
	}
	for _, c := range candidates {
		if isFile(c) {
			return c
		}
	}
	return ""
}

// LoadDefault loads the default rule file at path, or returns the embedded
// default when path is empty. Unlike Load, a missing file is an error.
func LoadDefault(path string) (*RuleFile, error) {
	if path == "" {
		return Builtin(), nil
	}
	abs, err := Canonical(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	rf, err := Load(abs)
	if err != nil {
		return nil, err
	}
	if rf == nil {
		return nil, &LoadError{Path: abs, Err: fs.ErrNotExist}
	}
	return rf, nil
}

// WriteDefault writes the embedded default rule file into dir under name
// and returns the written path. An existing file is only replaced when
// force is set.
func WriteDefault(dir, name string, force bool) (string, error) {
	if name == "" {
		name = DefaultFileName
	}
	target := filepath.Join(dir, name)
	if !force {
		if _, err := os.Stat(target); err == nil {
			return target, fmt.Errorf("%w: %s", ErrRuleFileExists, target)
		}
	}
	if err := os.WriteFile(target, defaultRules, 0o644); err != nil {
		return target, fmt.Errorf("failed to write rule file: %w", err)
	}
	return target, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
