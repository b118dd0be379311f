// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestProvider_LoadFromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := "configurations: [\"Debug\"]\nrun: {recursive: true}\n"
	if err := os.WriteFile(filepath.Join(dir, "config.cue"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Run.Recursive {
		t.Error("expected run.recursive from file")
	}
	if len(cfg.Configurations) != 1 || cfg.Configurations[0] != "Debug" {
		t.Errorf("Configurations = %v", cfg.Configurations)
	}
	if cfg.RulesFile != DefaultRulesFile {
		t.Errorf("RulesFile = %q, want default %q", cfg.RulesFile, DefaultRulesFile)
	}
}

func TestProvider_LoadDefaultsFromEmptyDir(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EntryPointRuntime != RuntimeVirtual {
		t.Errorf("EntryPointRuntime = %q, want virtual", cfg.EntryPointRuntime)
	}
}

func TestProvider_LoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() error = %v, want context.Canceled", err)
	}
}
