// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrToolNotFound is the sentinel error wrapped by ToolNotFoundError.
var ErrToolNotFound = errors.New("tool not found")

type (
	// Tool is one external program invocation.
	Tool struct {
		// Name is the executable name, resolved through PATH.
		Name string
		// Args are passed verbatim.
		Args []string
		// Dir is the working directory.
		Dir string
	}

	// ToolNotFoundError is returned when Tool.Name cannot be found on PATH.
	ToolNotFoundError struct {
		Tool string
		Err  error
	}

	// ToolRunner spawns external tools.
	ToolRunner struct {
		// LookPath resolves executables; tests replace it.
		LookPath func(file string) (string, error)
	}
)

// Error implements the error interface.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s is required but was not found on PATH", e.Tool)
}

// Unwrap returns ErrToolNotFound for errors.Is.
func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

// String renders the invocation as a command line.
func (t Tool) String() string {
	return strings.Join(append([]string{t.Name}, t.Args...), " ")
}

// NewToolRunner creates a ToolRunner that resolves tools with exec.LookPath.
func NewToolRunner() *ToolRunner {
	return &ToolRunner{LookPath: exec.LookPath}
}

// Available reports whether the named tool is on PATH.
func (r *ToolRunner) Available(name string) bool {
	_, err := r.LookPath(name)
	return err == nil
}

// Run checks the tool exists, then spawns it and waits for it to exit.
// A missing tool yields ExitStructural with a *ToolNotFoundError.
func (r *ToolRunner) Run(ctx context.Context, tool Tool, streams IO) *Result {
	path, err := r.LookPath(tool.Name)
	if err != nil {
		return NewErrorResult(ExitStructural, &ToolNotFoundError{Tool: tool.Name, Err: err})
	}

	slog.Debug("spawning tool", "tool", path, "args", tool.Args, "dir", tool.Dir)

	cmd := exec.CommandContext(ctx, path, tool.Args...)
	cmd.Dir = tool.Dir
	cmd.Stdin = streams.Stdin
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr

	return exitResult(cmd.Run())
}
