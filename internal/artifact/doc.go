// SPDX-License-Identifier: MPL-2.0

// Package artifact recognizes project files and bundle directories by name
// and turns them into prioritized actions that drive external build tools.
//
// Handlers never parse the files they match: ninja, make, msbuild,
// xcodebuild and doxygen do that. A Registry queries handlers in
// registration order and the first match wins.
package artifact
