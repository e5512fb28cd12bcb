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

// Package npm parses package.json (declared) and package-lock.json /
// yarn.lock / pnpm-lock.yaml (resolved) into package findings. The
// package.json decode follows the discovery package's
// scanner_npm.go approach: unmarshal into a small anonymous struct and
// merge the dependency maps, generalised from "find GitHub refs" to
// "emit every declared dependency" and extended to skip devDependencies
// per the manifest-parser contract.
package npm

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/depscan/pkg/manifest"
)

const Ecosystem = "npm"

// Analyzer implements plugin.ManifestAnalyzer for the npm ecosystem.
type Analyzer struct{}

// New returns the npm manifest/lockfile analyzer.
func New() *Analyzer { return &Analyzer{} }

// ManifestBasenames implements plugin.ManifestAnalyzer.
func (a *Analyzer) ManifestBasenames() []string {
	return []string{"package.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml"}
}

// AnalyzeManifests implements plugin.ManifestAnalyzer.
func (a *Analyzer) AnalyzeManifests(paths []string, scanRoot string) ([]manifest.Finding, error) {
	var findings []manifest.Finding
	for _, p := range paths {
		rel, err := filepath.Rel(scanRoot, p)
		if err != nil {
			rel = p
		}
		switch filepath.Base(p) {
		case "package.json":
			findings = append(findings, parsePackageJSON(p, rel)...)
		case "package-lock.json":
			findings = append(findings, parsePackageLockJSON(p, rel)...)
		case "yarn.lock":
			findings = append(findings, parseYarnLock(p, rel)...)
		case "pnpm-lock.yaml":
			findings = append(findings, parsePnpmLock(p, rel)...)
		}
	}
	return findings, nil
}

func parsePackageJSON(path, rel string) []manifest.Finding {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("ecosystem.npm.parse_error", "path", rel, "err", err)
		return nil
	}

	var pkg struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(content, &pkg); err != nil {
		slog.Warn("ecosystem.npm.parse_error", "path", rel, "err", err)
		return nil
	}

	var findings []manifest.Finding
	for name, constraint := range pkg.Dependencies {
		findings = append(findings, manifest.Finding{
			Kind:              manifest.KindPackage,
			Name:              name,
			Ecosystem:         Ecosystem,
			CurrentVersion:    resolveConstraint(constraint),
			VersionConstraint: constraint,
			ManifestFile:      rel,
			Confidence:        confidenceFor(constraint),
		})
	}
	return findings
}

var semverPattern = regexp.MustCompile(`^[\^~]?(\d+(?:\.\d+){0,2}(?:-[\w.]+)?)`)

// resolveConstraint extracts a single concrete version from a caret,
// tilde, or exact npm range.
func resolveConstraint(constraint string) string {
	if m := semverPattern.FindStringSubmatch(constraint); m != nil {
		return m[1]
	}
	return "unknown"
}

func confidenceFor(constraint string) manifest.Confidence {
	if resolveConstraint(constraint) == "unknown" {
		return manifest.ConfidenceMedium
	}
	return manifest.ConfidenceHigh
}

func parsePackageLockJSON(path, rel string) []manifest.Finding {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("ecosystem.npm.parse_error", "path", rel, "err", err)
		return nil
	}

	var lock struct {
		Packages map[string]struct {
			Version string `json:"version"`
			Dev     bool   `json:"dev"`
		} `json:"packages"`
	}
	if err := json.Unmarshal(content, &lock); err != nil {
		slog.Warn("ecosystem.npm.parse_error", "path", rel, "err", err)
		return nil
	}

	var findings []manifest.Finding
	for pkgPath, entry := range lock.Packages {
		if entry.Dev || pkgPath == "" {
			continue
		}
		name := strings.TrimPrefix(pkgPath, "node_modules/")
		if name == "" || entry.Version == "" {
			continue
		}
		findings = append(findings, manifest.Finding{
			Kind:           manifest.KindPackage,
			Name:           name,
			Ecosystem:      Ecosystem,
			CurrentVersion: entry.Version,
			ManifestFile:   rel,
			Confidence:     manifest.ConfidenceHigh,
		})
	}
	return findings
}

var yarnEntryPattern = regexp.MustCompile(`^"?([^@"][^"]*?)@`)
var yarnVersionPattern = regexp.MustCompile(`^\s*version\s+"([^"]+)"`)

// parseYarnLock extracts {name, version} pairs from yarn.lock's
// block-per-dependency format.
func parseYarnLock(path, rel string) []manifest.Finding {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("ecosystem.npm.parse_error", "path", rel, "err", err)
		return nil
	}

	var findings []manifest.Finding
	lines := strings.Split(string(content), "\n")
	var currentName string
	for _, line := range lines {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			if m := yarnEntryPattern.FindStringSubmatch(line); m != nil {
				currentName = m[1]
			} else {
				currentName = ""
			}
			continue
		}
		if currentName == "" {
			continue
		}
		if m := yarnVersionPattern.FindStringSubmatch(line); m != nil {
			findings = append(findings, manifest.Finding{
				Kind:           manifest.KindPackage,
				Name:           currentName,
				Ecosystem:      Ecosystem,
				CurrentVersion: m[1],
				ManifestFile:   rel,
				Confidence:     manifest.ConfidenceHigh,
			})
			currentName = ""
		}
	}
	return findings
}

var pnpmEntryPattern = regexp.MustCompile(`^\s*'?/?([^'":\s][^'":@]*)@([\w.\-+]+)[':]?:?\s*$`)

// parsePnpmLock does a best-effort line scan of pnpm-lock.yaml's
// "packages:" section; the format is YAML but the dependency keys are
// regular enough to extract without a full YAML parse.
func parsePnpmLock(path, rel string) []manifest.Finding {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("ecosystem.npm.parse_error", "path", rel, "err", err)
		return nil
	}

	var findings []manifest.Finding
	inPackages := false
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if strings.HasPrefix(trimmed, "packages:") {
			inPackages = true
			continue
		}
		if inPackages {
			if trimmed != "" && !strings.HasPrefix(trimmed, " ") {
				inPackages = false
				continue
			}
			if m := pnpmEntryPattern.FindStringSubmatch(trimmed); m != nil {
				findings = append(findings, manifest.Finding{
					Kind:           manifest.KindPackage,
					Name:           m[1],
					Ecosystem:      Ecosystem,
					CurrentVersion: m[2],
					ManifestFile:   rel,
					Confidence:     manifest.ConfidenceMedium,
				})
			}
		}
	}
	return findings
}
