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

// Package cargo parses Cargo.toml ([dependencies], declared) and
// Cargo.lock ([[package]], resolved) into package findings. There is
// no source-file analyzer for Rust in this build; the ecosystem is
// still wired since Cargo.lock/Cargo.toml are common enough in the
// retrieval pack's wider corpus to be worth reconciling on their own.
package cargo

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/depscan/pkg/manifest"
)

const Ecosystem = "cargo"

// Analyzer implements plugin.ManifestAnalyzer for the Rust ecosystem.
type Analyzer struct{}

// New returns the Cargo manifest/lockfile analyzer.
func New() *Analyzer { return &Analyzer{} }

// ManifestBasenames implements plugin.ManifestAnalyzer.
func (a *Analyzer) ManifestBasenames() []string { return []string{"Cargo.toml", "Cargo.lock"} }

// AnalyzeManifests implements plugin.ManifestAnalyzer.
func (a *Analyzer) AnalyzeManifests(paths []string, scanRoot string) ([]manifest.Finding, error) {
	var findings []manifest.Finding
	for _, p := range paths {
		rel, err := filepath.Rel(scanRoot, p)
		if err != nil {
			rel = p
		}
		switch filepath.Base(p) {
		case "Cargo.toml":
			findings = append(findings, parseCargoToml(p, rel)...)
		case "Cargo.lock":
			findings = append(findings, parseCargoLock(p, rel)...)
		}
	}
	return findings, nil
}

var tomlSectionPattern = regexp.MustCompile(`^\[([\w.\-]+)\]`)
var tomlDepLinePattern = regexp.MustCompile(`^([A-Za-z0-9_\-]+)\s*=\s*(.+)$`)
var versionPattern = regexp.MustCompile(`"([\^~=]?\d[\w.\-+]*)"`)

func parseCargoToml(path, rel string) []manifest.Finding {
	file, err := os.Open(path)
	if err != nil {
		slog.Warn("ecosystem.cargo.parse_error", "path", rel, "err", err)
		return nil
	}
	defer file.Close()

	var findings []manifest.Finding
	section := ""
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := tomlSectionPattern.FindStringSubmatch(line); m != nil {
			section = m[1]
			continue
		}
		if section != "dependencies" {
			continue
		}
		m := tomlDepLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		value := m[2]
		constraint := strings.Trim(value, `"`)
		current := "unknown"
		confidence := manifest.ConfidenceMedium
		if vm := versionPattern.FindStringSubmatch(value); vm != nil {
			constraint = vm[1]
			current = strings.TrimLeft(vm[1], "^~=")
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

var cargoLockNamePattern = regexp.MustCompile(`^name\s*=\s*"([^"]+)"`)
var cargoLockVersionPattern = regexp.MustCompile(`^version\s*=\s*"([^"]+)"`)

func parseCargoLock(path, rel string) []manifest.Finding {
	file, err := os.Open(path)
	if err != nil {
		slog.Warn("ecosystem.cargo.parse_error", "path", rel, "err", err)
		return nil
	}
	defer file.Close()

	var findings []manifest.Finding
	var pendingName string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "[[package]]" {
			pendingName = ""
			continue
		}
		if m := cargoLockNamePattern.FindStringSubmatch(line); m != nil {
			pendingName = m[1]
			continue
		}
		if m := cargoLockVersionPattern.FindStringSubmatch(line); m != nil && pendingName != "" {
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
