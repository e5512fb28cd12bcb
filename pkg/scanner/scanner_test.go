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

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/depscan/pkg/analyzer/python"
	"github.com/kraklabs/depscan/pkg/config"
	"github.com/kraklabs/depscan/pkg/ecosystem/pypi"
	"github.com/kraklabs/depscan/pkg/envresolver"
	"github.com/kraklabs/depscan/pkg/plugin"
)

func TestRun_EndToEndProducesValidatedManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("stripe>=7.0.0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte(
		"import stripe\n\ndef charge():\n    stripe.Charge.create(amount=100)\n    requests.get(\"https://api.example.com/v1/status\")\n",
	), 0o644))

	registry := plugin.NewRegistry()
	require.NoError(t, registry.Register(&python.Plugin{}))
	registry.RegisterManifestAnalyzer(pypi.New())

	resolver, err := envresolver.Build(envresolver.BuildOptions{})
	require.NoError(t, err)

	result, err := Run(context.Background(), Options{
		ScanRoot: dir,
		Config:   &config.Config{},
		Registry: registry,
		Resolver: resolver,
	})
	require.NoError(t, err)
	require.Equal(t, StateDone, result.State)
	require.NotNil(t, result.Manifest)
	require.Empty(t, result.ScanErrors)

	require.Len(t, result.Manifest.Packages, 1)
	require.Equal(t, "stripe", result.Manifest.Packages[0].Name)

	require.Len(t, result.Manifest.SDKs, 1)
	require.Equal(t, "stripe", result.Manifest.SDKs[0].Provider)

	require.Len(t, result.Manifest.APIs, 1)
	require.Equal(t, "https://api.example.com/v1/status", result.Manifest.APIs[0].URL)
}

func TestRun_FailsFastOnInaccessibleScanRoot(t *testing.T) {
	registry := plugin.NewRegistry()
	require.NoError(t, registry.Register(&python.Plugin{}))

	resolver, err := envresolver.Build(envresolver.BuildOptions{})
	require.NoError(t, err)

	result, err := Run(context.Background(), Options{
		ScanRoot: filepath.Join(t.TempDir(), "does-not-exist"),
		Config:   &config.Config{},
		Registry: registry,
		Resolver: resolver,
	})
	require.Error(t, err)
	require.Equal(t, StateFailed, result.State)
}
