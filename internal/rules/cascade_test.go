// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestResolve_NoRuleFilesYieldsDefaultOnly(t *testing.T) {
	t.Parallel()

	dir := mkdir(t, filepath.Join(t.TempDir(), "a", "b"))
	cache := NewCache("", nil)

	cs := cache.Resolve(dir, PhaseBuild)
	if len(cs.Files) != 1 || cs.Files[0] != cache.Default() {
		t.Fatalf("cascade = %v, want [default]", cs.Paths())
	}
	if cs.Leaf != nil {
		t.Errorf("Leaf = %v, want nil", cs.Leaf)
	}
}

func TestResolve_LeafAlwaysFirst(t *testing.T) {
	t.Parallel()

	for _, generic := range []string{"true", "false"} {
		t.Run("GENERIC="+generic, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := writeRules(t, dir, "GENERIC: "+generic+"\n")
			cs := NewCache("", nil).Resolve(dir, PhaseClean)
			if len(cs.Files) != 2 || cs.Files[0].Path() != path {
				t.Fatalf("cascade = %v, want [%s, default]", cs.Paths(), path)
			}
		})
	}
}

func TestResolve_NonGenericAncestorExcluded(t *testing.T) {
	t.Parallel()

	// /p has CONTINUE=true and no GENERIC; /p/a has CONTINUE=false.
	root := t.TempDir()
	writeRules(t, root, "CONTINUE: true\n")
	leafDir := filepath.Join(root, "a")
	leaf := writeRules(t, leafDir, "CONTINUE: false\n")

	cache := NewCache("", nil)
	cs := cache.Resolve(leafDir, PhaseBuild)
	want := []string{leaf, BuiltinPath}
	if !slices.Equal(cs.Paths(), want) {
		t.Errorf("cascade = %v, want %v", cs.Paths(), want)
	}

	// Even when the leaf continues, a non-GENERIC ancestor stays out.
	writeRules(t, leafDir, "CONTINUE: true\n")
	cache.Reset()
	cs = cache.Resolve(leafDir, PhaseBuild)
	if !slices.Equal(cs.Paths(), want) {
		t.Errorf("continuing leaf: cascade = %v, want %v", cs.Paths(), want)
	}
}

func TestResolve_GenericAncestorThroughContinueChain(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	top := writeRules(t, root, "GENERIC: true\n")
	writeRules(t, filepath.Join(root, "mid"), "CONTINUE: true\n")
	leafDir := filepath.Join(root, "mid", "leaf")
	leaf := writeRules(t, leafDir, "BUILD_CONTINUE: true\nCONTINUE: false\n")

	cache := NewCache("", nil)

	cs := cache.Resolve(leafDir, PhaseBuild)
	want := []string{leaf, top, BuiltinPath}
	if !slices.Equal(cs.Paths(), want) {
		t.Errorf("build cascade = %v, want %v", cs.Paths(), want)
	}

	// CONTINUE is false for the clean phase, so the ascent stops at the leaf.
	cs = cache.Resolve(leafDir, PhaseClean)
	want = []string{leaf, BuiltinPath}
	if !slices.Equal(cs.Paths(), want) {
		t.Errorf("clean cascade = %v, want %v", cs.Paths(), want)
	}
}

func TestResolve_MissingRuleFilesDoNotStopAscent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	top := writeRules(t, root, "GENERIC: true\n")
	leafDir := mkdir(t, filepath.Join(root, "x", "y"))

	cs := NewCache("", nil).Resolve(leafDir, PhaseBuild)
	want := []string{top, BuiltinPath}
	if !slices.Equal(cs.Paths(), want) {
		t.Errorf("cascade = %v, want %v", cs.Paths(), want)
	}
}

func TestResolve_LoadErrorsAreReported(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	top := writeRules(t, root, "GENERIC: true\n")
	bad := writeRules(t, filepath.Join(root, "bad"), "GENERIC: [\n")

	cs := NewCache("", nil).Resolve(filepath.Join(root, "bad"), PhaseBuild)
	if len(cs.LoadErrors) != 1 || cs.LoadErrors[0].Path != bad {
		t.Fatalf("LoadErrors = %v, want one error for %s", cs.LoadErrors, bad)
	}
	want := []string{top, BuiltinPath}
	if !slices.Equal(cs.Paths(), want) {
		t.Errorf("cascade = %v, want %v", cs.Paths(), want)
	}
}

func TestCascade_BoolFirstHitWins(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeRules(t, root, "GENERIC: true\nNO_RECURSE: true\nCLEAN_PROCESS_PROJECT_FILES: false\n")
	leafDir := filepath.Join(root, "leaf")
	writeRules(t, leafDir, "CONTINUE: true\nPROCESS_PROJECT_FILES: true\n")

	cs := NewCache("", nil).Resolve(leafDir, PhaseClean)
	if !cs.Bool(KeyNoRecurse, false) {
		t.Error("NO_RECURSE should be inherited from the GENERIC ancestor")
	}
	if !cs.Bool(KeyProcessProjectFiles, false) {
		t.Error("the leaf's PROCESS_PROJECT_FILES should win over the ancestor's")
	}
}

func TestCache_GetCachesInstancesAndErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeRules(t, dir, "GENERIC: true\n")
	cache := NewCache("", nil)

	first, err := cache.Get(path)
	if err != nil || first == nil {
		t.Fatalf("Get: %v, %v", first, err)
	}
	second, _ := cache.Get(filepath.Join(dir, ".", DefaultFileName))
	if first != second {
		t.Error("Get should return the cached instance for the same canonical path")
	}

	// A broken file keeps returning its cached error until Reset.
	if err := os.WriteFile(path, []byte("GENERIC: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if again, err := cache.Get(path); err != nil || again != first {
		t.Errorf("cached entry should be returned, got %v, %v", again, err)
	}
	cache.Reset()
	if _, err := cache.Get(path); err == nil {
		t.Error("expected load error after Reset")
	}
	if _, err := cache.Get(path); err == nil {
		t.Error("load error should be cached")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCache_CustomFileName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rules.cue"), []byte("GENERIC: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeRules(t, dir, "GENERIC: [\n")

	cache := NewCache("rules.cue", nil)
	cs := cache.Resolve(dir, PhaseBuild)
	if len(cs.LoadErrors) != 0 || cs.Leaf == nil || filepath.Base(cs.Leaf.Path()) != "rules.cue" {
		t.Errorf("unexpected cascade %v (errors %v)", cs.Paths(), cs.LoadErrors)
	}
}
