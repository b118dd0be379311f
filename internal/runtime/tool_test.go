// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestToolRunner_MissingTool(t *testing.T) {
	t.Parallel()

	runner := &ToolRunner{LookPath: func(string) (string, error) {
		return "", exec.ErrNotFound
	}}

	res := runner.Run(context.Background(), Tool{Name: "ninja", Args: []string{"-f", "build.ninja"}}, IO{})
	if res.ExitCode != ExitStructural {
		t.Errorf("exit code = %v, want %v", res.ExitCode, ExitStructural)
	}
	if !errors.Is(res.Error, ErrToolNotFound) {
		t.Errorf("error should wrap ErrToolNotFound, got %v", res.Error)
	}
	var notFound *ToolNotFoundError
	if !errors.As(res.Error, &notFound) || notFound.Tool != "ninja" {
		t.Errorf("expected *ToolNotFoundError for ninja, got %v", res.Error)
	}
	if runner.Available("ninja") {
		t.Error("Available should be false when LookPath fails")
	}
}

func TestTool_String(t *testing.T) {
	t.Parallel()

	tool := Tool{Name: "make", Args: []string{"-f", "makefile", "all"}}
	if got := tool.String(); got != "make -f makefile all" {
		t.Errorf("Tool.String() = %q", got)
	}
}
