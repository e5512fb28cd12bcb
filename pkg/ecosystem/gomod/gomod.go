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

// Package gomod parses go.mod (declared requirements) and go.sum
// (resolved versions) into package findings. The
// line-by-line require-block scan is adapted directly from the
// discovery package's go.mod scanner, generalised from "extract
// GitHub-hosted modules" to "extract every required module".
package gomod

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/depscan/pkg/manifest"
)

const Ecosystem = "go"

// Analyzer implements plugin.ManifestAnalyzer for Go modules.
type Analyzer struct{}

// New returns the go.mod/go.sum analyzer.
func New() *Analyzer { return &Analyzer{} }

// ManifestBasenames implements plugin.ManifestAnalyzer.
func (a *Analyzer) ManifestBasenames() []string { return []string{"go.mod", "go.sum"} }

// AnalyzeManifests implements plugin.ManifestAnalyzer.
func (a *Analyzer) AnalyzeManifests(paths []string, scanRoot string) ([]manifest.Finding, error) {
	var findings []manifest.Finding
	for _, p := range paths {
		rel, err := filepath.Rel(scanRoot, p)
		if err != nil {
			rel = p
		}
		switch filepath.Base(p) {
		case "go.mod":
			findings = append(findings, parseGoMod(p, rel)...)
		case "go.sum":
			findings = append(findings, parseGoSum(p, rel)...)
		}
	}
	return findings, nil
}

func parseGoMod(path, rel string) []manifest.Finding {
	file, err := os.Open(path)
	if err != nil {
		slog.Warn("ecosystem.gomod.parse_error", "path", rel, "err", err)
		return nil
	}
	defer file.Close()

	var findings []manifest.Finding
	inRequireBlock := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "require (") {
			inRequireBlock = true
			continue
		}
		if inRequireBlock && line == ")" {
			inRequireBlock = false
			continue
		}

		var modulePath, version string
		if inRequireBlock {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				modulePath, version = fields[0], fields[1]
			}
		} else if strings.HasPrefix(line, "require ") {
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				modulePath, version = fields[1], fields[2]
			}
		}
		if modulePath == "" {
			continue
		}
		findings = append(findings, manifest.Finding{
			Kind:              manifest.KindPackage,
			Name:              modulePath,
			Ecosystem:         Ecosystem,
			CurrentVersion:    version,
			VersionConstraint: version,
			ManifestFile:      rel,
			Confidence:        manifest.ConfidenceHigh,
		})
	}
	return findings
}

func parseGoSum(path, rel string) []manifest.Finding {
	file, err := os.Open(path)
	if err != nil {
		slog.Warn("ecosystem.gomod.parse_error", "path", rel, "err", err)
		return nil
	}
	defer file.Close()

	seen := make(map[string]bool)
	var findings []manifest.Finding
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		modulePath := fields[0]
		version := strings.TrimSuffix(fields[1], "/go.mod")
		key := modulePath + "@" + version
		if seen[key] {
			continue
		}
		seen[key] = true
		findings = append(findings, manifest.Finding{
			Kind:           manifest.KindPackage,
			Name:           modulePath,
			Ecosystem:      Ecosystem,
			CurrentVersion: version,
			ManifestFile:   rel,
			Confidence:     manifest.ConfidenceHigh,
		})
	}
	return findings
}
