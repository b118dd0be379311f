// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"

	"github.com/makeprojects/makeprojects/internal/rules"
	"github.com/makeprojects/makeprojects/internal/runtime"
)

type (
	// Options is the immutable run context of one phase.
	Options struct {
		// Phase selects build or clean.
		Phase rules.Phase
		// Recursive descends into subdirectories.
		Recursive bool
		// Preview prints work items instead of executing them.
		Preview bool
		// Fatal aborts the run on the first failing outcome.
		Fatal bool
		// Verbose renders every outcome and passes verbosity to tools.
		Verbose bool
		// Configurations filters the configurations built per artifact.
		// Empty means each tool's default.
		Configurations []string
		// RulesFile overrides the rule file name (build_rules.cue).
		RulesFile string
		// EntryPointRuntime is the runtime for entry points that do not
		// request one.
		EntryPointRuntime runtime.Mode
	}

	// Roots are the paths a run starts from.
	Roots struct {
		Files       []string
		Directories []string
	}
)

// Validate checks the phase and runtime mode.
func (o Options) Validate() error {
	if err := o.Phase.Validate(); err != nil {
		return err
	}
	if err := o.EntryPointRuntime.Validate(); err != nil {
		return fmt.Errorf("entry point runtime: %w", err)
	}
	return nil
}

// IsEmpty reports whether no root path was given.
func (r Roots) IsEmpty() bool {
	return len(r.Files) == 0 && len(r.Directories) == 0
}
