// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// pattern is a single compiled ignore rule. The anchoring/negation/
// dir-only parsing mirrors gitignore semantics as demonstrated by the
// ignore matchers in the retrieval pack; the actual glob matching
// (including "**") is delegated to doublestar rather than a
// hand-rolled matcher.
type pattern struct {
	glob     string
	negated  bool
	dirOnly  bool
	anchored bool
}

// IgnoreMatcher holds layered, ordered ignore patterns and evaluates a
// path against them using gitignore semantics: later patterns win,
// and a "!"-prefixed pattern re-includes a path an earlier pattern
// excluded.
type IgnoreMatcher struct {
	patterns []pattern
}

// NewIgnoreMatcher builds a matcher pre-seeded with the file walker's
// always-on defaults: dotfiles and node_modules, .git,
// dist, build, .next, coverage.
func NewIgnoreMatcher() *IgnoreMatcher {
	m := &IgnoreMatcher{}
	m.AddPatterns([]string{
		".*",
		"node_modules/**",
		".git/**",
		"dist/**",
		"build/**",
		".next/**",
		"coverage/**",
	})
	return m
}

// AddPatterns parses and appends gitignore-syntax lines, in order.
// Blank lines and "#" comments are skipped.
func (m *IgnoreMatcher) AddPatterns(lines []string) {
	for _, line := range lines {
		m.addPattern(line)
	}
}

// LoadFile parses a gitignore-syntax file at path. A missing file is
// not an error, since the ignore file is optional.
func (m *IgnoreMatcher) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	m.AddPatterns(lines)
	return nil
}

func (m *IgnoreMatcher) addPattern(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	p := pattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	}
	// A pattern without a slash matches the basename at any depth,
	// unless it is anchored to the scan root.
	if !p.anchored && !strings.Contains(line, "/") {
		line = "**/" + line
	}
	p.glob = line
	m.patterns = append(m.patterns, p)
}

// Match reports whether relPath (slash-separated, relative to the
// scan root) should be ignored. isDir indicates whether relPath names
// a directory, needed to evaluate dirOnly ("pattern/") rules and to
// let the walker prune a whole subtree without descending into it.
func (m *IgnoreMatcher) Match(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(strings.TrimPrefix(relPath, "./"))

	ignored := false
	for _, p := range m.patterns {
		matched := matchesPattern(p, relPath, isDir)
		if matched {
			ignored = !p.negated
		}
	}
	return ignored
}

func matchesPattern(p pattern, relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		// A dirOnly pattern can still exclude files nested under a
		// matching directory; check every ancestor directory.
		for _, ancestor := range ancestors(relPath) {
			if ok, _ := doublestar.Match(p.glob, ancestor); ok {
				return true
			}
		}
		return false
	}
	ok, _ := doublestar.Match(p.glob, relPath)
	if ok {
		return true
	}
	if isDir {
		// A directory also matches if any of its own ancestors matched,
		// so that "**/node_modules" prunes everything beneath it.
		for _, ancestor := range ancestors(relPath) {
			if ok, _ := doublestar.Match(p.glob, ancestor); ok {
				return true
			}
		}
	}
	return false
}

// ancestors returns every parent directory path of relPath, nearest
// first, e.g. "a/b/c" -> ["a/b", "a"].
func ancestors(relPath string) []string {
	var out []string
	dir := filepath.ToSlash(filepath.Dir(relPath))
	for dir != "." && dir != "/" && dir != "" {
		out = append(out, dir)
		next := filepath.ToSlash(filepath.Dir(dir))
		if next == dir {
			break
		}
		dir = next
	}
	return out
}
