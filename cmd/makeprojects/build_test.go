// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/makeprojects/makeprojects/internal/config"
	"github.com/makeprojects/makeprojects/internal/engine"
	"github.com/makeprojects/makeprojects/internal/issue"
	"github.com/makeprojects/makeprojects/internal/rules"
	"github.com/makeprojects/makeprojects/internal/runtime"
	"github.com/makeprojects/makeprojects/internal/testutil"

	"github.com/spf13/cobra"
)

// parsePhaseFlags binds the run flags to a bare command and parses args.
func parsePhaseFlags(t *testing.T, args ...string) (*cobra.Command, *runFlags) {
	t.Helper()

	flags := &runFlags{}
	cmd := &cobra.Command{Use: "build"}
	bindRunFlags(cmd, flags)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	return cmd, flags
}

func TestClassifyArgs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "Makefile")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing")

	roots := classifyArgs([]string{dir, file, missing})
	if !slices.Equal(roots.Directories, []string{dir}) {
		t.Errorf("Directories = %v", roots.Directories)
	}
	if !slices.Equal(roots.Files, []string{file, missing}) {
		t.Errorf("Files = %v", roots.Files)
	}
}

func TestPhaseOptions(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Run.Fatal = true
	cfg.Configurations = []config.ConfigurationName{"Debug"}
	cfg.EntryPointRuntime = config.RuntimeNative

	t.Run("configuration defaults", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t, staticConfig{cfg: cfg})
		cmd, flags := parsePhaseFlags(t)
		opts, err := phaseOptions(cmd, app, cfg, phaseClean, flags)
		if err != nil {
			t.Fatal(err)
		}
		if opts.Phase != rules.PhaseClean {
			t.Errorf("Phase = %s, want clean", opts.Phase)
		}
		if opts.Recursive || !opts.Fatal {
			t.Errorf("Recursive = %v, Fatal = %v", opts.Recursive, opts.Fatal)
		}
		if !slices.Equal(opts.Configurations, []string{"Debug"}) {
			t.Errorf("Configurations = %v", opts.Configurations)
		}
		if opts.RulesFile != rules.DefaultFileName {
			t.Errorf("RulesFile = %q", opts.RulesFile)
		}
		if opts.EntryPointRuntime != runtime.ModeNative {
			t.Errorf("EntryPointRuntime = %q", opts.EntryPointRuntime)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t, staticConfig{cfg: cfg})
		cmd, flags := parsePhaseFlags(t, "-r", "--fatal=false", "-c", "Release", "-c", "Profile",
			"--rules-file", "rules.cue", "--runtime", "virtual", "-n")
		opts, err := phaseOptions(cmd, app, cfg, phaseBuild, flags)
		if err != nil {
			t.Fatal(err)
		}
		if opts.Phase != rules.PhaseBuild || !opts.Recursive || opts.Fatal || !opts.Preview {
			t.Errorf("opts = %+v", opts)
		}
		if !slices.Equal(opts.Configurations, []string{"Release", "Profile"}) {
			t.Errorf("Configurations = %v", opts.Configurations)
		}
		if opts.RulesFile != "rules.cue" || opts.EntryPointRuntime != runtime.ModeVirtual {
			t.Errorf("RulesFile = %q, EntryPointRuntime = %q", opts.RulesFile, opts.EntryPointRuntime)
		}
	})

	t.Run("invalid rules file name", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t, staticConfig{cfg: cfg})
		cmd, flags := parsePhaseFlags(t, "--rules-file", "sub/rules.cue")
		if _, err := phaseOptions(cmd, app, cfg, phaseBuild, flags); !errors.Is(err, config.ErrInvalidRulesFileName) {
			t.Errorf("expected ErrInvalidRulesFileName, got %v", err)
		}
	})

	t.Run("invalid runtime", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t, staticConfig{cfg: cfg})
		cmd, flags := parsePhaseFlags(t, "--runtime", "container")
		_, err := phaseOptions(cmd, app, cfg, phaseBuild, flags)
		if !errors.Is(err, runtime.ErrInvalidMode) {
			t.Fatalf("expected ErrInvalidMode, got %v", err)
		}
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.IssueId != issue.InvalidRuntimeModeId {
			t.Errorf("expected actionable error linked to InvalidRuntimeModeId, got %v", err)
		}
	})
}

func TestNewRuleCache(t *testing.T) {
	t.Parallel()

	t.Run("configured default rule file", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t)
		cache, err := newRuleCache(cfg, "rules.cue")
		if err != nil {
			t.Fatal(err)
		}
		if cache.FileName() != "rules.cue" {
			t.Errorf("FileName() = %q", cache.FileName())
		}
		if cache.Default().Path() != cfg.DefaultRules {
			t.Errorf("Default().Path() = %q, want %q", cache.Default().Path(), cfg.DefaultRules)
		}
	})

	t.Run("missing default rule file", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.DefaultRules = filepath.Join(t.TempDir(), "missing.cue")
		_, err := newRuleCache(cfg, rules.DefaultFileName)
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.IssueId != issue.DefaultRulesNotFoundId {
			t.Errorf("expected DefaultRulesNotFoundId, got %v", err)
		}
	})

	t.Run("broken default rule file", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.DefaultRules = writeRules(t, t.TempDir(), "build: {\n")
		_, err := newRuleCache(cfg, rules.DefaultFileName)
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.IssueId != issue.RuleFileParseErrorId {
			t.Errorf("expected RuleFileParseErrorId, got %v", err)
		}
	})
}

// Not parallel: it points HOME at a temp dir.
func TestNewRuleCache_SearchesHome(t *testing.T) {
	home := tempDir(t)
	t.Cleanup(testutil.SetHomeDir(t, home))
	t.Cleanup(testutil.MustUnsetenv(t, rules.EnvDefaultRules))

	want := writeRules(t, home, "GENERIC: true\n")

	cache, err := newRuleCache(config.DefaultConfig(), rules.DefaultFileName)
	if err != nil {
		t.Fatal(err)
	}
	if got := cache.Default().Path(); got != want {
		t.Errorf("Default().Path() = %q, want %q", got, want)
	}

	t.Run("environment wins", func(t *testing.T) {
		envRules := writeRules(t, tempDir(t), "CONTINUE: true\n")
		t.Cleanup(testutil.MustSetenv(t, rules.EnvDefaultRules, envRules))

		cache, err := newRuleCache(config.DefaultConfig(), rules.DefaultFileName)
		if err != nil {
			t.Fatal(err)
		}
		if got := cache.Default().Path(); got != envRules {
			t.Errorf("Default().Path() = %q, want %q", got, envRules)
		}
	})
}

func TestBuildCommand_RunsEntryPoint(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, `build: "echo built > built.txt"`+"\n")

	app, _ := newTestApp(t, staticConfig{cfg: testConfig(t)})
	if _, err := execute(t, app, "build", dir); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "built.txt")); err != nil {
		t.Errorf("expected entry point to run in the rule file's directory: %v", err)
	}
}

func TestBuildCommand_Preview(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, `build: "echo built > built.txt"`+"\n")

	app, _ := newTestApp(t, staticConfig{cfg: testConfig(t)})
	out, err := execute(t, app, "build", "-n", dir)
	if err != nil {
		t.Fatalf("build -n: %v", err)
	}
	if !strings.Contains(out, "entry point build") {
		t.Errorf("expected preview line, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "built.txt")); !os.IsNotExist(err) {
		t.Error("preview must not run entry points")
	}
}

func TestBuildCommand_FailureExitCodes(t *testing.T) {
	t.Run("tool status", func(t *testing.T) {
		dir := t.TempDir()
		writeRules(t, dir, `build: "exit 3"`+"\n")

		app, _ := newTestApp(t, staticConfig{cfg: testConfig(t)})
		out, err := execute(t, app, "build", dir)
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != 3 {
			t.Fatalf("expected exit code 3, got %v", err)
		}
		if !strings.Contains(out, engine.MessageFailure) {
			t.Errorf("expected failure summary, got %q", out)
		}
	})

	t.Run("broken rule file", func(t *testing.T) {
		dir := t.TempDir()
		writeRules(t, dir, "build: {\n")

		app, _ := newTestApp(t, staticConfig{cfg: testConfig(t)})
		_, err := execute(t, app, "build", dir)
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != int(runtime.ExitLoad) {
			t.Fatalf("expected exit code %d, got %v", runtime.ExitLoad, err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		app, _ := newTestApp(t, staticConfig{cfg: testConfig(t)})
		_, err := execute(t, app, "build", filepath.Join(t.TempDir(), "missing"))
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != int(runtime.ExitStructural) {
			t.Fatalf("expected exit code %d, got %v", runtime.ExitStructural, err)
		}
	})
}

func TestRebuildCommand_CleansThenBuilds(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, `clean: "echo clean >> log.txt"
build: "echo build >> log.txt"
`)

	app, _ := newTestApp(t, staticConfig{cfg: testConfig(t)})
	if _, err := execute(t, app, "rebuild", dir); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(string(data)); !slices.Equal(got, []string{"clean", "build"}) {
		t.Errorf("log = %v, want [clean build]", got)
	}
}

func TestBuildCommand_Report(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, `build: "exit 0"`+"\n")
	reportPath := filepath.Join(t.TempDir(), "report.json")

	app, _ := newTestApp(t, staticConfig{cfg: testConfig(t)})
	if _, err := execute(t, app, "build", "--report", reportPath, dir); err != nil {
		t.Fatalf("build --report: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatal(err)
	}
	var report engine.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if report.RunID == "" || report.ExitCode != 0 || len(report.Outcomes) != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.Outcomes[0].Phase != rules.PhaseBuild {
		t.Errorf("outcome phase = %s", report.Outcomes[0].Phase)
	}
}

func TestBuildCommand_InvalidReportFormat(t *testing.T) {
	app, _ := newTestApp(t, staticConfig{cfg: testConfig(t)})
	_, err := execute(t, app, "build", "--report", filepath.Join(t.TempDir(), "report.xml"), t.TempDir())
	if !errors.Is(err, engine.ErrInvalidReportFormat) {
		t.Errorf("expected ErrInvalidReportFormat, got %v", err)
	}
}
