// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/makeprojects/makeprojects/internal/artifact"
	"github.com/makeprojects/makeprojects/internal/rules"
	"github.com/makeprojects/makeprojects/internal/runtime"
)

type (
	// fakeHandler matches names ending in suffix and produces one action
	// per configuration that returns code.
	fakeHandler struct {
		suffix   string
		priority int
		code     runtime.ExitCode
		// cleanNA makes clean actions not applicable.
		cleanNA bool
	}

	fakeAction struct {
		priority int
		source   string
		config   string
		code     runtime.ExitCode
	}

	// recorder is a Runnable that logs its name when run.
	recorder struct {
		name  string
		code  runtime.ExitCode
		ran   *[]string
		panic string
	}
)

func (h *fakeHandler) Name() string { return "fake" + h.suffix }

func (h *fakeHandler) Match(path string) bool { return strings.HasSuffix(path, h.suffix) }

func (h *fakeHandler) BuildActions(path string, configurations []string, _ bool) []artifact.Action {
	if len(configurations) == 0 {
		configurations = []string{"all"}
	}
	actions := make([]artifact.Action, 0, len(configurations))
	for _, cfg := range configurations {
		actions = append(actions, &fakeAction{priority: h.priority, source: path, config: cfg, code: h.code})
	}
	return actions
}

func (h *fakeHandler) CleanActions(path string, configurations []string, verbose bool) []artifact.Action {
	if h.cleanNA {
		return []artifact.Action{&fakeAction{priority: h.priority, source: path, config: "all", code: runtime.NotApplicable}}
	}
	return h.BuildActions(path, configurations, verbose)
}

func (a *fakeAction) Priority() int         { return a.priority }
func (a *fakeAction) Source() string        { return a.source }
func (a *fakeAction) Configuration() string { return a.config }
func (a *fakeAction) String() string        { return "fake " + filepath.Base(a.source) }

func (a *fakeAction) Run(context.Context, runtime.IO) *runtime.Result {
	return runtime.NewExitCodeResult(a.code)
}

func (r *recorder) Run(context.Context, runtime.IO) *runtime.Result {
	if r.panic != "" {
		panic(r.panic)
	}
	*r.ran = append(*r.ran, r.name)
	return runtime.NewExitCodeResult(r.code)
}

func (r *recorder) String() string { return r.name }

// newTestSession creates a session with discarded streams, a preview
// buffer and the given handlers.
func newTestSession(opts Options, handlers ...artifact.Handler) (*Session, *bytes.Buffer) {
	var preview bytes.Buffer
	s := NewSession(opts,
		WithRegistry(artifact.NewRegistry(handlers...)),
		WithIO(runtime.IO{Stdout: io.Discard, Stderr: io.Discard}),
		WithPreviewWriter(&preview),
	)
	return s, &preview
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return path
}

func writeRules(t *testing.T, dir, content string) string {
	t.Helper()
	return writeFile(t, filepath.Join(dir, rules.DefaultFileName), content)
}

// codes returns the outcome codes in log order.
func codes(r *Results) []runtime.ExitCode {
	var out []runtime.ExitCode
	for _, o := range r.Outcomes() {
		out = append(out, o.Code)
	}
	return out
}

// countLines returns the number of lines in path, or 0 if it is missing.
func countLines(t *testing.T, path string) int {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return len(strings.Split(strings.TrimSpace(string(data)), "\n"))
}
