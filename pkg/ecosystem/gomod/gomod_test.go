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

package gomod

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/depscan/pkg/manifest"
)

func TestAnalyzeManifests_ParsesRequireBlock(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "go.mod")
	content := "module example.com/app\n\ngo 1.22\n\nrequire (\n\tgithub.com/stretchr/testify v1.11.0\n\tgithub.com/fatih/color v1.18.0\n)\n\nrequire github.com/pkg/errors v0.9.1\n"
	require.NoError(t, os.WriteFile(modPath, []byte(content), 0o644))

	a := New()
	findings, err := a.AnalyzeManifests([]string{modPath}, dir)
	require.NoError(t, err)
	require.Len(t, findings, 3)
	for _, f := range findings {
		require.Equal(t, manifest.KindPackage, f.Kind)
		require.Equal(t, Ecosystem, f.Ecosystem)
		require.Equal(t, "go.mod", f.ManifestFile)
		require.Empty(t, f.Locations)
	}
}

func TestAnalyzeManifests_DedupesGoSumGoModLines(t *testing.T) {
	dir := t.TempDir()
	sumPath := filepath.Join(dir, "go.sum")
	content := "github.com/fatih/color v1.18.0 h1:abc=\ngithub.com/fatih/color v1.18.0/go.mod h1:def=\n"
	require.NoError(t, os.WriteFile(sumPath, []byte(content), 0o644))

	a := New()
	findings, err := a.AnalyzeManifests([]string{sumPath}, dir)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, "github.com/fatih/color", findings[0].Name)
	require.Equal(t, "v1.18.0", findings[0].CurrentVersion)
}
