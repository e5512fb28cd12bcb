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

// Package pypi parses requirements.txt, the [tool.poetry.dependencies]
// table and the PEP 621 [project] dependencies array of pyproject.toml
// (declared), and poetry.lock (resolved) into package findings. Pipfile
// and Pipfile.lock are claimed by basename but not parsed. No TOML
// library is wired anywhere in the retrieval pack, so
// pyproject.toml is read with the same line-scanning, section-tracking
// approach the pack's own scanners use for structured-but-simple
// formats, rather than a hand-rolled general TOML parser.
package pypi

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/depscan/pkg/manifest"
)

const Ecosystem = "pypi"

// Analyzer implements plugin.ManifestAnalyzer for the Python ecosystem.
type Analyzer struct{}

// New returns the Python manifest/lockfile analyzer.
func New() *Analyzer { return &Analyzer{} }

// ManifestBasenames implements plugin.ManifestAnalyzer.
func (a *Analyzer) ManifestBasenames() []string {
	return []string{"requirements.txt", "pyproject.toml", "poetry.lock", "Pipfile", "Pipfile.lock"}
}

var requirementsPattern = regexp.MustCompile(`^requirements(-[\w.-]+)?\.txt$`)

// AnalyzeManifests implements plugin.ManifestAnalyzer. Requirements
// files are matched by pattern: requirements.txt is claimed by basename,
// and the scanner routes requirements-*.txt variants here as well.
func (a *Analyzer) AnalyzeManifests(paths []string, scanRoot string) ([]manifest.Finding, error) {
	var findings []manifest.Finding
	for _, p := range paths {
		rel, err := filepath.Rel(scanRoot, p)
		if err != nil {
			rel = p
		}
		base := filepath.Base(p)
		switch {
		case requirementsPattern.MatchString(base):
			findings = append(findings, parseRequirementsTxt(p, rel)...)
		case base == "pyproject.toml":
			findings = append(findings, parsePyprojectToml(p, rel)...)
		case base == "poetry.lock":
			findings = append(findings, parsePoetryLock(p, rel)...)
		}
	}
	return findings, nil
}

var platformPseudoPackages = map[string]bool{"python": true, "python3": true}

func normalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}

var requirementLinePattern = regexp.MustCompile(`^([A-Za-z0-9_.\-]+)\s*(==|>=|<=|~=|!=|>|<)?\s*([\w.\-+*]*)`)

// parseRequirementSpec extracts a finding from one "name<op>version"
// requirement specifier, shared by requirements.txt lines and PEP 621
// dependency array entries. A concrete version is high-confidence
// regardless of which operator introduces it; only a fully unconstrained
// name (no version at all) is graded medium.
func parseRequirementSpec(spec string) (name, constraint string, current string, confidence manifest.Confidence, ok bool) {
	m := requirementLinePattern.FindStringSubmatch(spec)
	if m == nil || m[1] == "" {
		return "", "", "", "", false
	}
	name = normalizeName(m[1])
	operator, version := m[2], m[3]
	if operator != "" && version != "" {
		constraint = operator + version
	}
	if version != "" {
		current = version
		confidence = manifest.ConfidenceHigh
	} else {
		current = "unknown"
		confidence = manifest.ConfidenceMedium
	}
	return name, constraint, current, confidence, true
}

func parseRequirementsTxt(path, rel string) []manifest.Finding {
	file, err := os.Open(path)
	if err != nil {
		slog.Warn("ecosystem.pypi.parse_error", "path", rel, "err", err)
		return nil
	}
	defer file.Close()

	var findings []manifest.Finding
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		name, constraint, current, confidence, ok := parseRequirementSpec(line)
		if !ok || platformPseudoPackages[name] {
			continue
		}
		findings = append(findings, manifest.Finding{
			Kind:              manifest.KindPackage,
			Name:              name,
			Ecosystem:         Ecosystem,
			CurrentVersion:    current,
			VersionConstraint: constraint,
			ManifestFile:      rel,
			Confidence:        confidence,
		})
	}
	return findings
}

var tomlSectionPattern = regexp.MustCompile(`^\[([\w.\-]+)\]`)
var tomlDepLinePattern = regexp.MustCompile(`^([A-Za-z0-9_.\-]+)\s*=\s*(.+)$`)
var caretConstraintPattern = regexp.MustCompile(`"[\^~]?(\d+(?:\.\d+){0,2})`)
var pep621ArrayStartPattern = regexp.MustCompile(`^dependencies\s*=\s*\[(.*)$`)
var quotedEntryPattern = regexp.MustCompile(`"([^"]+)"`)

// parsePyprojectToml scans the dependency tables of pyproject.toml
// (both Poetry's [tool.poetry.dependencies]/[tool.poetry.dev-dependencies]
// and PEP 621's [project] "dependencies" array) line by line, tracking
// the current section header.
func parsePyprojectToml(path, rel string) []manifest.Finding {
	file, err := os.Open(path)
	if err != nil {
		slog.Warn("ecosystem.pypi.parse_error", "path", rel, "err", err)
		return nil
	}
	defer file.Close()

	var findings []manifest.Finding
	section := ""
	inPep621Array := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if inPep621Array {
			findings = append(findings, pep621ArrayEntries(line, rel)...)
			if strings.Contains(line, "]") {
				inPep621Array = false
			}
			continue
		}

		if m := tomlSectionPattern.FindStringSubmatch(line); m != nil {
			section = m[1]
			continue
		}

		if section == "project" {
			if m := pep621ArrayStartPattern.FindStringSubmatch(line); m != nil {
				findings = append(findings, pep621ArrayEntries(m[1], rel)...)
				if !strings.Contains(m[1], "]") {
					inPep621Array = true
				}
				continue
			}
		}

		if section != "tool.poetry.dependencies" && section != "tool.poetry.group.dev.dependencies" && section != "tool.poetry.dev-dependencies" {
			continue
		}
		// Skip test/dev-only sections explicitly.
		if strings.Contains(section, "dev") {
			continue
		}
		m := tomlDepLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := normalizeName(m[1])
		if platformPseudoPackages[name] {
			continue
		}
		value := m[2]
		current := "unknown"
		confidence := manifest.ConfidenceMedium
		constraint := strings.Trim(value, `"`)
		if cm := caretConstraintPattern.FindStringSubmatch(value); cm != nil {
			current = cm[1]
			confidence = manifest.ConfidenceHigh
		}
		findings = append(findings, manifest.Finding{
			Kind:              manifest.KindPackage,
			Name:              name,
			Ecosystem:         Ecosystem,
			CurrentVersion:    current,
			VersionConstraint: constraint,
			ManifestFile:      rel,
			Confidence:        confidence,
		})
	}
	return findings
}

// pep621ArrayEntries extracts package findings from one line of a
// PEP 621 "dependencies = [...]" array, which may hold zero or more
// quoted requirement specifiers (the array can be fully inline or
// span several lines, one entry per line).
func pep621ArrayEntries(line, rel string) []manifest.Finding {
	var findings []manifest.Finding
	for _, m := range quotedEntryPattern.FindAllStringSubmatch(line, -1) {
		name, constraint, current, confidence, ok := parseRequirementSpec(m[1])
		if !ok || platformPseudoPackages[name] {
			continue
		}
		findings = append(findings, manifest.Finding{
			Kind:              manifest.KindPackage,
			Name:              name,
			Ecosystem:         Ecosystem,
			CurrentVersion:    current,
			VersionConstraint: constraint,
			ManifestFile:      rel,
			Confidence:        confidence,
		})
	}
	return findings
}

var poetryLockNamePattern = regexp.MustCompile(`^name\s*=\s*"([^"]+)"`)
var poetryLockVersionPattern = regexp.MustCompile(`^version\s*=\s*"([^"]+)"`)

func parsePoetryLock(path, rel string) []manifest.Finding {
	file, err := os.Open(path)
	if err != nil {
		slog.Warn("ecosystem.pypi.parse_error", "path", rel, "err", err)
		return nil
	}
	defer file.Close()

	var findings []manifest.Finding
	var pendingName string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if m := poetryLockNamePattern.FindStringSubmatch(line); m != nil {
			pendingName = normalizeName(m[1])
			continue
		}
		if m := poetryLockVersionPattern.FindStringSubmatch(line); m != nil && pendingName != "" {
			findings = append(findings, manifest.Finding{
				Kind:           manifest.KindPackage,
				Name:           pendingName,
				Ecosystem:      Ecosystem,
				CurrentVersion: m[1],
				ManifestFile:   rel,
				Confidence:     manifest.ConfidenceHigh,
			})
			pendingName = ""
		}
	}
	return findings
}
