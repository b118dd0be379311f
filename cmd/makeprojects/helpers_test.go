// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/makeprojects/makeprojects/internal/config"
	"github.com/makeprojects/makeprojects/internal/rules"
	"github.com/makeprojects/makeprojects/internal/testutil"
)

// staticConfig is a ConfigProvider that always returns the same result.
type staticConfig struct {
	cfg *config.Config
	err error
}

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

// testConfig returns the default configuration with a default rule file
// written to a temp dir, so runs never read the user's home directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	path, err := rules.WriteDefault(tempDir(t), rules.DefaultFileName, false)
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	cfg.DefaultRules = path
	return cfg
}

// newTestApp builds an App around provider with buffered streams.
func newTestApp(t *testing.T, provider ConfigProvider) (*App, *bytes.Buffer) {
	t.Helper()

	var stderr bytes.Buffer
	app, err := NewApp(Dependencies{Config: provider, Stdout: &bytes.Buffer{}, Stderr: &stderr})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app, &stderr
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeRules(t *testing.T, dir, content string) string {
	t.Helper()
	return testutil.MustWriteFile(t, filepath.Join(dir, rules.DefaultFileName), content)
}

// tempDir returns a temp dir with symlinks resolved, matching the
// canonical paths printed by the rule commands.
func tempDir(t *testing.T) string {
	t.Helper()
	return testutil.ResolvedTempDir(t)
}
