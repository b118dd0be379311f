// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/makeprojects/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/makeprojects/config.cue on macOS,
// %APPDATA%\makeprojects\config.cue on Windows). Values can be overridden with
// MAKEPROJECTS_-prefixed environment variables, and command-line flags override both.
//
// The file is validated against config_schema.cue before it is merged into Viper.
package config
