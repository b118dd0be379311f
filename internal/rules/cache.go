// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"errors"
	"path/filepath"
	"sync"
)

type (
	// Cache holds loaded rule files keyed by canonical path. A load error is
	// cached with the path so a broken file is parsed once per Cache.
	Cache struct {
		mu       sync.Mutex
		fileName string
		def      *RuleFile
		entries  map[string]cacheEntry
	}

	cacheEntry struct {
		rf  *RuleFile
		err error
	}
)

// NewCache creates a Cache looking up fileName in each directory (empty
// means DefaultFileName). def is appended to every cascade; nil selects the
// embedded default.
func NewCache(fileName string, def *RuleFile) *Cache {
	if fileName == "" {
		fileName = DefaultFileName
	}
	if def == nil {
		def = Builtin()
	}
	return &Cache{
		fileName: fileName,
		def:      def,
		entries:  make(map[string]cacheEntry),
	}
}

// FileName returns the rule file name looked up in each directory.
func (c *Cache) FileName() string { return c.fileName }

// Default returns the default rule file.
func (c *Cache) Default() *RuleFile { return c.def }

// Get returns the rule file at path, loading it on first request. It
// returns (nil, nil) when no file exists at path.
func (c *Cache) Get(path string) (*RuleFile, error) {
	canonical, err := Canonical(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[canonical]; ok {
		return entry.rf, entry.err
	}
	rf, err := Load(canonical)
	c.entries[canonical] = cacheEntry{rf: rf, err: err}
	return rf, err
}

// ForDir returns the rule file of dir, if any.
func (c *Cache) ForDir(dir string) (*RuleFile, error) {
	return c.Get(filepath.Join(dir, c.fileName))
}

// Reset drops every cached entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of cached paths, including misses.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Canonical returns the absolute, cleaned form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func asLoadError(path string, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	return &LoadError{Path: path, Err: err}
}
