// SPDX-License-Identifier: MPL-2.0

// Package runtime executes the two kinds of external work the engine drives:
// rule-file entry-point scripts and artifact tool invocations.
//
// Entry points run either in the embedded mvdan/sh interpreter (the virtual
// runtime, the default) or in the host shell (the native runtime). Tool
// invocations always spawn a host process after checking the executable is on
// PATH, so a missing tool becomes a failing Result instead of a spawn error.
package runtime
