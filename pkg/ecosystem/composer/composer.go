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

// Package composer parses composer.json ([require], declared) and
// composer.lock ("packages", resolved) into package findings. Like
// cargo, there is no matching PHP source-file analyzer in this build;
// the ecosystem parser is still wired on its own.
package composer

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/depscan/pkg/manifest"
)

const Ecosystem = "packagist"

// Analyzer implements plugin.ManifestAnalyzer for the PHP/Composer ecosystem.
type Analyzer struct{}

// New returns the Composer manifest/lockfile analyzer.
func New() *Analyzer { return &Analyzer{} }

// ManifestBasenames implements plugin.ManifestAnalyzer.
func (a *Analyzer) ManifestBasenames() []string {
	return []string{"composer.json", "composer.lock"}
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
		case "composer.json":
			findings = append(findings, parseComposerJSON(p, rel)...)
		case "composer.lock":
			findings = append(findings, parseComposerLock(p, rel)...)
		}
	}
	return findings, nil
}

// phpPlatformPattern matches Composer's platform pseudo-packages,
// which never resolve to a real index entry.
var phpPlatformPattern = regexp.MustCompile(`^(php|ext-|lib-|composer-)[^/]*$`)

func parseComposerJSON(path, rel string) []manifest.Finding {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("ecosystem.composer.parse_error", "path", rel, "err", err)
		return nil
	}

	var doc struct {
		Require map[string]string `json:"require"`
	}
	if err := json.Unmarshal(content, &doc); err != nil {
		slog.Warn("ecosystem.composer.parse_error", "path", rel, "err", err)
		return nil
	}

	var findings []manifest.Finding
	for name, constraint := range doc.Require {
		if phpPlatformPattern.MatchString(name) {
			continue
		}
		current, confidence := resolveConstraint(constraint)
		findings = append(findings, manifest.Finding{
			Kind:              manifest.KindPackage,
			Name:              strings.ToLower(name),
			Ecosystem:         Ecosystem,
			CurrentVersion:    current,
			VersionConstraint: constraint,
			ManifestFile:      rel,
			Confidence:        confidence,
		})
	}
	return findings
}

var phpSemverPattern = regexp.MustCompile(`^[\^~]?v?(\d+(?:\.\d+){0,2})`)

func resolveConstraint(constraint string) (string, manifest.Confidence) {
	if m := phpSemverPattern.FindStringSubmatch(constraint); m != nil {
		return m[1], manifest.ConfidenceHigh
	}
	return "unknown", manifest.ConfidenceMedium
}

func parseComposerLock(path, rel string) []manifest.Finding {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("ecosystem.composer.parse_error", "path", rel, "err", err)
		return nil
	}

	var lock struct {
		Packages []struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"packages"`
	}
	if err := json.Unmarshal(content, &lock); err != nil {
		slog.Warn("ecosystem.composer.parse_error", "path", rel, "err", err)
		return nil
	}

	var findings []manifest.Finding
	for _, pkg := range lock.Packages {
		findings = append(findings, manifest.Finding{
			Kind:           manifest.KindPackage,
			Name:           strings.ToLower(pkg.Name),
			Ecosystem:      Ecosystem,
			CurrentVersion: strings.TrimPrefix(pkg.Version, "v"),
			ManifestFile:   rel,
			Confidence:     manifest.ConfidenceHigh,
		})
	}
	return findings
}
