// SPDX-License-Identifier: MPL-2.0

// Package cli contains CLI integration tests using testscript.
//
// Each script runs the real makeprojects binary against a project tree
// unpacked from its txtar archive.
package cli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var (
	// binaryPath is the path to the built makeprojects binary.
	binaryPath string
	// projectRoot is the path to the makeprojects project root.
	projectRoot string
)

func TestMain(m *testing.M) {
	// Find project root (where go.mod is located)
	wd, err := os.Getwd()
	if err != nil {
		panic("failed to get working directory: " + err.Error())
	}

	// Walk up to find go.mod
	projectRoot = wd
	for {
		if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			panic("could not find project root (go.mod)")
		}
		projectRoot = parent
	}

	// Build the binary
	binDir := filepath.Join(projectRoot, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		panic("failed to create bin directory: " + err.Error())
	}

	binaryName := "makeprojects"
	if runtime.GOOS == "windows" {
		binaryName = "makeprojects.exe"
	}
	binaryPath = filepath.Join(binDir, binaryName)

	cmd := exec.CommandContext(context.Background(), "go", "build", "-o", binaryPath, ".")
	cmd.Dir = projectRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build makeprojects: " + err.Error())
	}

	os.Exit(m.Run())
}

// commonSetup isolates a script from the user's configuration and default
// rule files.
func commonSetup(env *testscript.Env) error {
	// Add the binary directory to PATH
	binDir := filepath.Dir(binaryPath)
	env.Setenv("PATH", binDir+string(os.PathListSeparator)+env.Getenv("PATH"))

	home := filepath.Join(env.WorkDir, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		return err
	}
	env.Setenv("HOME", home)
	env.Setenv("USERPROFILE", home)
	env.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	env.Setenv("APPDATA", filepath.Join(home, "AppData"))

	// Unset so the builtin default rule file is used.
	env.Setenv("BUILD_RULES", "")

	return nil
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: commonSetup,
		// Continue running all tests even if one fails
		ContinueOnError: true,
	})
}
