// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
)

// NativeRuntime executes scripts with the host shell.
type NativeRuntime struct {
	// Shell overrides shell detection when set.
	Shell string
}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return string(ModeNative)
}

// Available reports whether a usable shell was found.
func (r *NativeRuntime) Available() bool {
	_, err := r.shell()
	return err == nil
}

// Run executes the script body as the shell's command string.
func (r *NativeRuntime) Run(ctx context.Context, script Script, streams IO) *Result {
	shell, err := r.shell()
	if err != nil {
		return NewErrorResult(1, err)
	}

	args := append(shellArgs(shell), script.Body)
	cmd := exec.CommandContext(ctx, shell, args...)
	cmd.Dir = script.Dir
	cmd.Env = buildEnv(script.Env)
	cmd.Stdin = streams.Stdin
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr

	return exitResult(cmd.Run())
}

func (r *NativeRuntime) shell() (string, error) {
	if r.Shell != "" {
		return exec.LookPath(r.Shell)
	}

	candidates := []string{"bash", "sh"}
	if goruntime.GOOS == "windows" {
		candidates = []string{"pwsh", "powershell", "cmd"}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no shell found (tried %s)", strings.Join(candidates, ", "))
}

func shellArgs(shell string) []string {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(shell), filepath.Ext(shell)))
	switch base {
	case "cmd":
		return []string{"/C"}
	case "pwsh", "powershell":
		return []string{"-NoProfile", "-Command"}
	default:
		return []string{"-c"}
	}
}

// exitResult maps the error returned by exec.Cmd.Run to a Result.
func exitResult(err error) *Result {
	if err == nil {
		return NewSuccessResult()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := FromStatus(exitErr.ExitCode())
		if validateErr := code.Validate(); validateErr != nil {
			// Killed by a signal: ExitCode() reports -1.
			return NewErrorResult(1, fmt.Errorf("process terminated abnormally: %w", err))
		}
		return NewExitCodeResult(code)
	}
	return NewErrorResult(1, err)
}
