// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"

	"github.com/makeprojects/makeprojects/internal/runtime"
)

func missingTools() *runtime.ToolRunner {
	return &runtime.ToolRunner{LookPath: func(string) (string, error) {
		return "", exec.ErrNotFound
	}}
}

func toolArgs(t *testing.T, a Action) []string {
	t.Helper()

	ta, ok := a.(*ToolAction)
	if !ok {
		t.Fatalf("expected *ToolAction, got %T", a)
	}
	return ta.Tool.Args
}

func TestToolHandlers_Match(t *testing.T) {
	t.Parallel()

	runner := missingTools()
	tests := []struct {
		handler Handler
		yes     []string
		no      []string
	}{
		{NewNinjaHandler(runner), []string{"build.ninja", "x/Rules.NINJA"}, []string{"ninja", "build.ninja.bak"}},
		{NewMakefileHandler(runner), []string{"makefile", "Makefile", "GNUmakefile", "src/linux.mak"}, []string{"makefile.txt", "CMakeLists.txt"}},
		{NewVisualStudioHandler(runner), []string{"game.sln", "GAME.SLN"}, []string{"game.vcxproj"}},
		{NewXcodeHandler(runner), []string{"Game.xcodeproj"}, []string{"Game.xcworkspace", "project.pbxproj"}},
		{NewDoxygenHandler(runner), []string{"docs/Doxyfile"}, []string{"doxyfile.bak"}},
	}

	for _, tt := range tests {
		t.Run(tt.handler.Name(), func(t *testing.T) {
			t.Parallel()

			for _, p := range tt.yes {
				if !tt.handler.Match(filepath.FromSlash(p)) {
					t.Errorf("Match(%q) = false, want true", p)
				}
			}
			for _, p := range tt.no {
				if tt.handler.Match(filepath.FromSlash(p)) {
					t.Errorf("Match(%q) = true, want false", p)
				}
			}
		})
	}
}

func TestToolHandler_ActionsPerConfiguration(t *testing.T) {
	t.Parallel()

	h := NewVisualStudioHandler(missingTools())
	path := filepath.Join("proj", "game.sln")

	actions := h.BuildActions(path, []string{"Debug", "Release"}, false)
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	for i, cfg := range []string{"Debug", "Release"} {
		a := actions[i]
		if a.Configuration() != cfg || a.Priority() != PriorityProject || a.Source() != path {
			t.Errorf("action %d = %s/%d/%s", i, a.Configuration(), a.Priority(), a.Source())
		}
		if !slices.Contains(toolArgs(t, a), "-p:Configuration="+cfg) {
			t.Errorf("action %d args %v lack configuration", i, toolArgs(t, a))
		}
		if dir := a.(*ToolAction).Tool.Dir; dir != "proj" {
			t.Errorf("tool dir = %q, want proj", dir)
		}
	}

	def := h.CleanActions(path, nil, true)
	if len(def) != 1 || def[0].Configuration() != ConfigurationDefault {
		t.Fatalf("default clean actions = %v", def)
	}
	want := []string{"game.sln", "-t:Clean", "-nologo", "-v:normal"}
	if got := toolArgs(t, def[0]); !slices.Equal(got, want) {
		t.Errorf("clean args = %v, want %v", got, want)
	}
}

func TestToolHandlers_Commands(t *testing.T) {
	t.Parallel()

	runner := missingTools()
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{"ninja build", NewNinjaHandler(runner).BuildActions("build.ninja", nil, false)[0], "ninja -f build.ninja"},
		{"ninja target", NewNinjaHandler(runner).BuildActions("build.ninja", []string{"release"}, true)[0], "ninja -f build.ninja -v release"},
		{"ninja clean", NewNinjaHandler(runner).CleanActions("build.ninja", nil, false)[0], "ninja -f build.ninja -t clean"},
		{"make build", NewMakefileHandler(runner).BuildActions("makefile", nil, true)[0], "make -f makefile"},
		{"make clean", NewMakefileHandler(runner).CleanActions("makefile", nil, false)[0], "make -f makefile -s clean"},
		{"xcode build", NewXcodeHandler(runner).BuildActions("Game.xcodeproj", []string{"Debug"}, true)[0], "xcodebuild -project Game.xcodeproj -configuration Debug build"},
		{"xcode clean", NewXcodeHandler(runner).CleanActions("Game.xcodeproj", nil, false)[0], "xcodebuild -project Game.xcodeproj -quiet clean"},
		{"doxygen", NewDoxygenHandler(runner).BuildActions("Doxyfile", []string{"Debug", "Release"}, false)[0], "doxygen Doxyfile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.action.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDoxygen_SingleActionAndNoClean(t *testing.T) {
	t.Parallel()

	h := NewDoxygenHandler(missingTools())
	if n := len(h.BuildActions("Doxyfile", []string{"Debug", "Release"}, false)); n != 1 {
		t.Errorf("doxygen should produce one action, got %d", n)
	}
	clean := h.CleanActions("Doxyfile", nil, false)
	if len(clean) != 1 {
		t.Fatalf("expected one clean action, got %d", len(clean))
	}
	res := clean[0].Run(context.Background(), runtime.IO{})
	if res.ExitCode != runtime.NotApplicable {
		t.Errorf("doxygen clean = %v, want NotApplicable", res.ExitCode)
	}
}

func TestToolAction_MissingTool(t *testing.T) {
	t.Parallel()

	a := NewNinjaHandler(missingTools()).BuildActions(filepath.Join(t.TempDir(), "build.ninja"), nil, false)[0]
	res := a.Run(context.Background(), runtime.IO{})
	if res.ExitCode != runtime.ExitStructural || !errors.Is(res.Error, runtime.ErrToolNotFound) {
		t.Errorf("missing tool result = %+v", res)
	}
}
