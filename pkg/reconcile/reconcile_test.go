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

package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/depscan/pkg/manifest"
)

func TestReconcile_ManifestOnlyPassesThroughVerbatim(t *testing.T) {
	findings := []manifest.Finding{
		{
			Kind:              manifest.KindPackage,
			Name:              "stripe",
			Ecosystem:         "pypi",
			CurrentVersion:    "7.0.0",
			VersionConstraint: ">=7.0.0",
			ManifestFile:      "requirements.txt",
			Confidence:        manifest.ConfidenceHigh,
		},
	}

	merged := Reconcile(findings)
	require.Len(t, merged, 1)
	require.Equal(t, "7.0.0", merged[0].CurrentVersion)
	require.Equal(t, ">=7.0.0", merged[0].VersionConstraint)
}

func TestReconcile_LockfilePinsResolvedVersionOverManifestConstraint(t *testing.T) {
	findings := []manifest.Finding{
		{
			Kind:              manifest.KindPackage,
			Name:              "stripe",
			Ecosystem:         "pypi",
			CurrentVersion:    "7.0.0",
			VersionConstraint: ">=7.0.0",
			ManifestFile:      "requirements.txt",
			Confidence:        manifest.ConfidenceHigh,
		},
		{
			Kind:           manifest.KindPackage,
			Name:           "stripe",
			Ecosystem:      "pypi",
			CurrentVersion: "7.1.0",
			ManifestFile:   "poetry.lock",
			Confidence:     manifest.ConfidenceHigh,
		},
	}

	merged := Reconcile(findings)
	require.Len(t, merged, 1)
	require.Equal(t, "7.1.0", merged[0].CurrentVersion)
	require.Equal(t, ">=7.0.0", merged[0].VersionConstraint)
	require.Equal(t, "requirements.txt", merged[0].ManifestFile)
}

func TestReconcile_LockfileOnlyCapturesTransitiveDependency(t *testing.T) {
	findings := []manifest.Finding{
		{
			Kind:           manifest.KindPackage,
			Name:           "urllib3",
			Ecosystem:      "pypi",
			CurrentVersion: "2.2.1",
			ManifestFile:   "poetry.lock",
			Confidence:     manifest.ConfidenceHigh,
		},
	}

	merged := Reconcile(findings)
	require.Len(t, merged, 1)
	require.Equal(t, "urllib3", merged[0].Name)
	require.Equal(t, "2.2.1", merged[0].CurrentVersion)
}

func TestReconcile_NonPackageFindingsPassThroughUnchanged(t *testing.T) {
	findings := []manifest.Finding{
		{Kind: manifest.KindAPI, URL: "https://api.example.com/v1/charge", Method: "POST"},
	}

	merged := Reconcile(findings)
	require.Len(t, merged, 1)
	require.Equal(t, manifest.KindAPI, merged[0].Kind)
}
