// SPDX-License-Identifier: MPL-2.0

// Package rules loads build_rules.cue rule files and resolves the ordered
// cascade of rule files that applies to a directory.
//
// A rule file declares phase entry points (prebuild, build, postbuild, clean)
// as shell scripts, boolean flags that control cascade ascent and directory
// recursion, and dependency paths that must be processed before the directory
// owning the rule file. Flags and dependencies are looked up under a
// phase-prefixed key first (BUILD_GENERIC) and an unscoped key second
// (GENERIC).
//
// Loaded rule files are cached by canonical path for the lifetime of a Cache.
// Every resolved cascade ends with the default rule file, which is either a
// user-provided file found by FindDefault or the embedded default.
package rules
