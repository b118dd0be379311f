// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Both rule files (build_rules.cue) and the user configuration file go through
// the same three steps:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with the schema definition
//  3. Validate, then either decode to a Go value or keep the unified
//     cue.Value for dynamic lookups
//
// # Usage
//
//	//go:embed rules_schema.cue
//	var schemaBytes []byte
//
//	value, err := cueutil.Unify(schemaBytes, data, "#BuildRules",
//	    cueutil.WithFilename(path))
//	if err != nil {
//	    return nil, err // Error includes the CUE path for debugging
//	}
package cueutil
