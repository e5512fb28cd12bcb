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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/depscan/pkg/manifest"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "")
	require.NoError(t, err)
	require.Equal(t, float64(DefaultMaxFileSizeMB), cfg.MaxFileSizeMB)
}

func TestLoad_DecodesKnownKeys(t *testing.T) {
	dir := t.TempDir()
	yamlBody := `
output: yaml
outFile: out.yaml
languages: [python, go]
roots: [src]
ignore: ["tests/**"]
env:
  STRIPE_API_BASE: https://api.stripe.com
min_confidence: medium
max_file_size_mb: 2
sdks:
  custom-aws:
    package: boto3
    provider: aws
    patterns: ["boto3.client"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigName), []byte(yamlBody), 0o644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	require.Equal(t, "yaml", cfg.Output)
	require.Equal(t, []string{"python", "go"}, cfg.Languages)
	require.Equal(t, "https://api.stripe.com", cfg.Env["STRIPE_API_BASE"])
	require.Equal(t, manifest.ConfidenceMedium, cfg.MinConfidence)
	require.Equal(t, float64(2), cfg.MaxFileSizeMB)
	require.Equal(t, "aws", cfg.SDKs["custom-aws"].Provider)
}

func TestLoad_RejectsUnknownOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigName), []byte("output: xml\n"), 0o644))
	_, err := Load(dir, "")
	require.Error(t, err)
}

func TestResolveOutputPath_RejectsEscape(t *testing.T) {
	dir := t.TempDir()
	_, err := ResolveOutputPath(dir, "../escape.json")
	require.Error(t, err)
}

func TestResolveOutputPath_AcceptsWithinWorkingDir(t *testing.T) {
	dir := t.TempDir()
	resolved, err := ResolveOutputPath(dir, "out/manifest.json")
	require.NoError(t, err)
	require.Contains(t, resolved, dir)
}
