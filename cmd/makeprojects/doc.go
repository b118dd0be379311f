// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for makeprojects.
//
// This package implements the Cobra command hierarchy: the build, clean and
// rebuild phases, rule file inspection under "rules", and configuration
// management under "config". Commands receive an App, which owns the
// configuration provider and the output streams.
package cmd
