// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

const (
	// ModeVirtual runs scripts in the embedded mvdan/sh interpreter.
	ModeVirtual Mode = "virtual"
	// ModeNative runs scripts in the host shell.
	ModeNative Mode = "native"
)

// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
var ErrInvalidMode = errors.New("invalid runtime mode")

type (
	// Mode selects how an entry-point script is executed.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	InvalidModeError struct {
		Value Mode
	}

	// IO holds the standard streams handed to scripts and tools.
	IO struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Script is one entry-point body ready to run.
	Script struct {
		// Name labels the script in error messages (e.g. "build_rules.cue:build").
		Name string
		// Body is the shell source.
		Body string
		// Dir is the working directory.
		Dir string
		// Env is layered on top of the inherited process environment.
		Env map[string]string
	}

	// Runtime executes entry-point scripts.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Available reports whether the runtime can run on this host.
		Available() bool
		// Run executes the script and blocks until it finishes.
		Run(ctx context.Context, script Script, streams IO) *Result
	}

	// Set holds one instance of every runtime, indexed by Mode.
	Set struct {
		runtimes map[Mode]Runtime
	}
)

// Error implements the error interface.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: virtual, native)", e.Value)
}

// Unwrap returns ErrInvalidMode for errors.Is.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// Validate returns an error if the Mode is not recognized. The zero value is
// valid and means ModeVirtual.
func (m Mode) Validate() error {
	switch m {
	case "", ModeVirtual, ModeNative:
		return nil
	default:
		return &InvalidModeError{Value: m}
	}
}

// String returns the mode name.
func (m Mode) String() string { return string(m) }

// StandardIO returns the process streams.
func StandardIO() IO {
	return IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// NewSet creates a Set with the virtual and native runtimes.
func NewSet() *Set {
	return &Set{runtimes: map[Mode]Runtime{
		ModeVirtual: NewVirtualRuntime(),
		ModeNative:  NewNativeRuntime(),
	}}
}

// Register replaces the runtime used for mode.
func (s *Set) Register(mode Mode, rt Runtime) {
	s.runtimes[mode] = rt
}

// Get returns the runtime for mode. The zero Mode selects ModeVirtual.
func (s *Set) Get(mode Mode) (Runtime, error) {
	if mode == "" {
		mode = ModeVirtual
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	rt, ok := s.runtimes[mode]
	if !ok || !rt.Available() {
		return nil, fmt.Errorf("runtime %q is not available on this host", mode)
	}
	return rt, nil
}

// EnvToSlice converts env to KEY=VALUE pairs in key order.
func EnvToSlice(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	result := make([]string, 0, len(env))
	for _, k := range keys {
		result = append(result, k+"="+env[k])
	}
	return result
}

// buildEnv layers extra on top of the process environment. Later entries win
// for duplicate keys in both os/exec and the mvdan/sh environ.
func buildEnv(extra map[string]string) []string {
	return append(os.Environ(), EnvToSlice(extra)...)
}
