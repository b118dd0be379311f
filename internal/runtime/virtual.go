// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes scripts with the embedded mvdan/sh interpreter.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return string(ModeVirtual)
}

// Available always returns true; the interpreter is built in.
func (r *VirtualRuntime) Available() bool {
	return true
}

// Run parses and interprets the script.
func (r *VirtualRuntime) Run(ctx context.Context, script Script, streams IO) *Result {
	prog, err := parseScript(script.Name, script.Body)
	if err != nil {
		return NewErrorResult(1, err)
	}

	runner, err := interp.New(
		interp.Dir(script.Dir),
		interp.Env(expand.ListEnviron(buildEnv(script.Env)...)),
		interp.StdIO(streams.Stdin, streams.Stdout, streams.Stderr),
	)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return NewExitCodeResult(FromStatus(int(status)))
		}
		return NewErrorResult(1, fmt.Errorf("script %s failed: %w", script.Name, err))
	}
	return NewSuccessResult()
}

// CheckSyntax parses body with the bash dialect and reports syntax errors.
func CheckSyntax(name, body string) error {
	_, err := parseScript(name, body)
	return err
}

func parseScript(name, body string) (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(body), name)
	if err != nil {
		return nil, fmt.Errorf("script syntax error: %w", err)
	}
	return prog, nil
}
