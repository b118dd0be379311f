// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// PhaseBuild runs the prebuild, build and postbuild entry points.
	PhaseBuild Phase = "build"
	// PhaseClean runs the clean entry point.
	PhaseClean Phase = "clean"
)

// Flag keys. Each is looked up as <PREFIX>_<KEY> first, then <KEY>.
const (
	KeyGeneric             = "GENERIC"
	KeyContinue            = "CONTINUE"
	KeyNoRecurse           = "NO_RECURSE"
	KeyProcessProjectFiles = "PROCESS_PROJECT_FILES"
	KeyDependencies        = "DEPENDENCIES"
)

// Entry point priorities.
const (
	PriorityPrebuild  = 1
	PriorityClean     = 10
	PriorityBuild     = 40
	PriorityPostbuild = 99
)

// ErrInvalidPhase is the sentinel error wrapped by InvalidPhaseError.
var ErrInvalidPhase = errors.New("invalid phase")

type (
	// Phase is a named pass over the tree.
	Phase string

	// InvalidPhaseError is returned when a Phase value is not recognized.
	InvalidPhaseError struct {
		Value Phase
	}

	// Slot names one entry point of a phase and its scheduling priority.
	Slot struct {
		Name     string
		Priority int
	}
)

// Error implements the error interface.
func (e *InvalidPhaseError) Error() string {
	return fmt.Sprintf("invalid phase %q (valid: build, clean)", e.Value)
}

// Unwrap returns ErrInvalidPhase for errors.Is.
func (e *InvalidPhaseError) Unwrap() error { return ErrInvalidPhase }

// Validate returns an error if the Phase is not recognized.
func (p Phase) Validate() error {
	switch p {
	case PhaseBuild, PhaseClean:
		return nil
	default:
		return &InvalidPhaseError{Value: p}
	}
}

// String returns the phase name.
func (p Phase) String() string { return string(p) }

// Prefix returns the key prefix for phase-scoped flags (BUILD, CLEAN).
func (p Phase) Prefix() string { return strings.ToUpper(string(p)) }

// Key returns the phase-scoped form of key.
func (p Phase) Key(key string) string { return p.Prefix() + "_" + key }

// Slots returns the entry points of the phase in declaration order.
func (p Phase) Slots() []Slot {
	switch p {
	case PhaseBuild:
		return []Slot{
			{Name: "prebuild", Priority: PriorityPrebuild},
			{Name: "build", Priority: PriorityBuild},
			{Name: "postbuild", Priority: PriorityPostbuild},
		}
	case PhaseClean:
		return []Slot{{Name: "clean", Priority: PriorityClean}}
	default:
		return nil
	}
}
