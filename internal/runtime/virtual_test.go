// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func runVirtual(t *testing.T, script Script) (*Result, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	res := NewVirtualRuntime().Run(context.Background(), script, IO{Stdout: &stdout, Stderr: &stderr})
	return res, stdout.String()
}

func TestVirtualRuntime_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("success with env and dir", func(t *testing.T) {
		t.Parallel()

		res, out := runVirtual(t, Script{
			Name: "test",
			Body: `echo "$CONFIGURATION"; pwd`,
			Dir:  dir,
			Env:  map[string]string{"CONFIGURATION": "Release"},
		})
		if !res.Success() {
			t.Fatalf("unexpected result: %+v", res)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 2 || lines[0] != "Release" {
			t.Fatalf("unexpected output %q", out)
		}
		if filepath.Clean(lines[1]) != filepath.Clean(dir) {
			t.Errorf("pwd = %q, want %q", lines[1], dir)
		}
	})

	t.Run("exit status is propagated", func(t *testing.T) {
		t.Parallel()

		res, _ := runVirtual(t, Script{Name: "test", Body: "exit 3", Dir: dir})
		if res.ExitCode != 3 || res.Error != nil {
			t.Errorf("got %+v, want exit 3 without error", res)
		}
	})

	t.Run("not applicable status maps to sentinel", func(t *testing.T) {
		t.Parallel()

		res, _ := runVirtual(t, Script{Name: "test", Body: "exit " + strconv.Itoa(NotApplicableStatus), Dir: dir})
		if res.ExitCode != NotApplicable {
			t.Errorf("got %v, want NotApplicable", res.ExitCode)
		}
	})

	t.Run("syntax error is reported", func(t *testing.T) {
		t.Parallel()

		res, _ := runVirtual(t, Script{Name: "broken", Body: "if then fi (", Dir: dir})
		if res.ExitCode == 0 || res.Error == nil {
			t.Errorf("expected failure with error, got %+v", res)
		}
	})

	t.Run("writes files relative to dir", func(t *testing.T) {
		t.Parallel()

		sub := t.TempDir()
		res, _ := runVirtual(t, Script{Name: "touch", Body: "echo hi > out.txt", Dir: sub})
		if !res.Success() {
			t.Fatalf("unexpected result: %+v", res)
		}
		if _, err := os.Stat(filepath.Join(sub, "out.txt")); err != nil {
			t.Errorf("expected out.txt to exist: %v", err)
		}
	})
}

func TestCheckSyntax(t *testing.T) {
	t.Parallel()

	if err := CheckSyntax("ok", "echo hi && exit 0"); err != nil {
		t.Errorf("valid script rejected: %v", err)
	}
	if err := CheckSyntax("bad", "echo 'unterminated"); err == nil {
		t.Error("invalid script accepted")
	}
}
