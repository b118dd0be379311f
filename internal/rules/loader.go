// SPDX-License-Identifier: MPL-2.0

package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/makeprojects/makeprojects/internal/runtime"
	"github.com/makeprojects/makeprojects/pkg/cueutil"
)

const schemaPath = "#BuildRules"

// ErrLoad is the sentinel error wrapped by LoadError.
var ErrLoad = errors.New("failed to load rule file")

//go:embed rules_schema.cue
var rulesSchema []byte

// LoadError is returned when a rule file exists but cannot be read, parsed
// or validated.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load rule file %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrLoad and the underlying cause.
func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// Load reads and validates the rule file at path. A missing file is not an
// error: Load returns (nil, nil).
func Load(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	rf, err := parse(path, filepath.Dir(path), data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return rf, nil
}

// Parse validates data as a rule file located at path.
func Parse(path string, data []byte) (*RuleFile, error) {
	rf, err := parse(path, filepath.Dir(path), data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return rf, nil
}

func parse(path, dir string, data []byte) (*RuleFile, error) {
	value, err := cueutil.Unify(rulesSchema, data, schemaPath, cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}
	rf := &RuleFile{path: path, dir: dir, value: value}
	if err := checkEntryPoints(rf); err != nil {
		return nil, err
	}
	return rf, nil
}

// checkEntryPoints rejects virtual entry points that do not parse, so a
// broken script is reported as a load failure instead of at run time.
func checkEntryPoints(rf *RuleFile) error {
	for _, phase := range []Phase{PhaseBuild, PhaseClean} {
		for _, ep := range rf.EntryPoints(phase) {
			if ep.Runtime == runtime.ModeNative {
				continue
			}
			if err := runtime.CheckSyntax(rf.path+":"+ep.Name, ep.Script); err != nil {
				return fmt.Errorf("entry point %q: %w", ep.Name, err)
			}
		}
	}
	return nil
}
