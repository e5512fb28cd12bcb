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

package pypi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/depscan/pkg/manifest"
)

func TestAnalyzeManifests_RequirementsTxtManifestOnly(t *testing.T) {
	dir := t.TempDir()
	reqPath := filepath.Join(dir, "requirements.txt")
	require.NoError(t, os.WriteFile(reqPath, []byte("stripe>=7.0.0\n# a comment\nrequests==2.31.0\npython_dateutil\n"), 0o644))

	a := New()
	findings, err := a.AnalyzeManifests([]string{reqPath}, dir)
	require.NoError(t, err)
	require.Len(t, findings, 3)

	byName := map[string]manifest.Finding{}
	for _, f := range findings {
		byName[f.Name] = f
	}
	require.Equal(t, "7.0.0", byName["stripe"].CurrentVersion)
	require.Equal(t, ">=7.0.0", byName["stripe"].VersionConstraint)
	require.Equal(t, manifest.ConfidenceHigh, byName["stripe"].Confidence)

	require.Equal(t, "2.31.0", byName["requests"].CurrentVersion)
	require.Equal(t, manifest.ConfidenceHigh, byName["requests"].Confidence)

	require.Equal(t, "unknown", byName["python-dateutil"].CurrentVersion)
	require.Equal(t, manifest.ConfidenceMedium, byName["python-dateutil"].Confidence)
}

func TestAnalyzeManifests_Pep621DependenciesArray(t *testing.T) {
	dir := t.TempDir()
	pyprojectPath := filepath.Join(dir, "pyproject.toml")
	contents := `[project]
name = "example"
dependencies = [
    "stripe>=7.0.0",
    "boto3",
]

[tool.poetry.dependencies]
python = "^3.11"
`
	require.NoError(t, os.WriteFile(pyprojectPath, []byte(contents), 0o644))

	a := New()
	findings, err := a.AnalyzeManifests([]string{pyprojectPath}, dir)
	require.NoError(t, err)

	byName := map[string]manifest.Finding{}
	for _, f := range findings {
		byName[f.Name] = f
	}
	require.Equal(t, "7.0.0", byName["stripe"].CurrentVersion)
	require.Equal(t, manifest.ConfidenceHigh, byName["stripe"].Confidence)
	require.Equal(t, "unknown", byName["boto3"].CurrentVersion)
	require.Equal(t, manifest.ConfidenceMedium, byName["boto3"].Confidence)
}

func TestAnalyzeManifests_SkipsPlatformPseudoPackage(t *testing.T) {
	dir := t.TempDir()
	reqPath := filepath.Join(dir, "requirements.txt")
	require.NoError(t, os.WriteFile(reqPath, []byte("python==3.11\nflask==2.0.0\n"), 0o644))

	a := New()
	findings, err := a.AnalyzeManifests([]string{reqPath}, dir)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, "flask", findings[0].Name)
}

func TestAnalyzeManifests_NormalisesUnderscoreNames(t *testing.T) {
	dir := t.TempDir()
	reqPath := filepath.Join(dir, "requirements.txt")
	require.NoError(t, os.WriteFile(reqPath, []byte("Some_Package==1.0.0\n"), 0o644))

	a := New()
	findings, err := a.AnalyzeManifests([]string{reqPath}, dir)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, "some-package", findings[0].Name)
}
