// SPDX-License-Identifier: MPL-2.0

// Package engine walks directory trees and runs the build or clean phase
// over them.
//
// A Session owns everything scoped to one run: the rule file cache, the set
// of processed paths, the record of executed entry points and the Results
// log. The Walker visits directories depth-first, resolving each
// directory's rule cascade, expanding dependencies and collecting work
// items from rule-file entry points and recognized artifacts. The Scheduler
// runs one directory's work items in priority order.
//
// Execution is single-threaded. Abort is the only cancellation primitive:
// it is raised by a structural error, by the first failure in fatal mode or
// by a cancelled context, and it stops the walk.
package engine
