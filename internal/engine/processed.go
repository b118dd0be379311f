// SPDX-License-Identifier: MPL-2.0

package engine

import "github.com/makeprojects/makeprojects/internal/rules"

// ProcessedSet records the canonical paths visited in one run.
type ProcessedSet struct {
	paths map[string]struct{}
}

// NewProcessedSet creates an empty set.
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{paths: make(map[string]struct{})}
}

// Admit adds path and reports whether it was new. A false result means the
// path was already processed and must be skipped.
func (p *ProcessedSet) Admit(path string) bool {
	if canonical, err := rules.Canonical(path); err == nil {
		path = canonical
	}
	if _, ok := p.paths[path]; ok {
		return false
	}
	p.paths[path] = struct{}{}
	return true
}

// Contains reports whether path was admitted.
func (p *ProcessedSet) Contains(path string) bool {
	if canonical, err := rules.Canonical(path); err == nil {
		path = canonical
	}
	_, ok := p.paths[path]
	return ok
}

// Len returns the number of admitted paths.
func (p *ProcessedSet) Len() int { return len(p.paths) }
