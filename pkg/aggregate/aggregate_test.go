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

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/depscan/pkg/manifest"
)

func TestAggregate_DedupesSDKFindingAndUnionsServicesAndLocations(t *testing.T) {
	findings := []manifest.Finding{
		{
			Kind:         manifest.KindSDK,
			Provider:     "stripe",
			SDKPackage:   "stripe-python",
			ServicesUsed: []string{"Charges"},
			Confidence:   manifest.ConfidenceHigh,
			Locations:    []manifest.Location{{File: "billing.py", Line: 10}},
		},
		{
			Kind:         manifest.KindSDK,
			Provider:     "stripe",
			SDKPackage:   "stripe-python",
			ServicesUsed: []string{"Customers"},
			Confidence:   manifest.ConfidenceHigh,
			Locations:    []manifest.Location{{File: "billing.py", Line: 22}, {File: "billing.py", Line: 10}},
		},
	}

	m, verr, err := Aggregate(findings, manifest.Metadata{ScannerVersion: "test", ScanTimestamp: "2026-07-30T00:00:00Z"}, "")
	require.NoError(t, err)
	require.Nil(t, verr)
	require.Len(t, m.SDKs, 1)

	sdk := m.SDKs[0]
	require.Equal(t, "sdk:stripe/stripe-python", sdk.ID)
	require.ElementsMatch(t, []string{"Charges", "Customers"}, sdk.ServicesUsed)
	require.Equal(t, 2, sdk.UsageCount)
	require.Len(t, sdk.Locations, 2)
}

func TestAggregate_PackageMergeKeepsStrongerConfidenceAndFillsGaps(t *testing.T) {
	findings := []manifest.Finding{
		{
			Kind:           manifest.KindPackage,
			Name:           "requests",
			Ecosystem:      "pypi",
			CurrentVersion: "unknown",
			ManifestFile:   "requirements.txt",
			Confidence:     manifest.ConfidenceMedium,
		},
		{
			Kind:           manifest.KindPackage,
			Name:           "requests",
			Ecosystem:      "pypi",
			CurrentVersion: "2.31.0",
			ManifestFile:   "requirements.txt",
			Confidence:     manifest.ConfidenceHigh,
		},
	}

	m, verr, err := Aggregate(findings, manifest.Metadata{ScannerVersion: "test", ScanTimestamp: "2026-07-30T00:00:00Z"}, "")
	require.NoError(t, err)
	require.Nil(t, verr)
	require.Len(t, m.Packages, 1)
	require.Equal(t, "2.31.0", m.Packages[0].CurrentVersion)
	require.Equal(t, manifest.ConfidenceHigh, m.Packages[0].Confidence)
	require.Equal(t, "pkg:pypi/requests@2.31.0", m.Packages[0].ID)
}

func TestAggregate_ComputesTotalDependenciesFound(t *testing.T) {
	findings := []manifest.Finding{
		{Kind: manifest.KindPackage, Name: "a", Ecosystem: "npm", ManifestFile: "package.json", Confidence: manifest.ConfidenceHigh},
		{
			Kind: manifest.KindAPI, URL: "https://api.example.com/v1", Method: "GET", Confidence: manifest.ConfidenceHigh,
			Locations: []manifest.Location{{File: "client.go", Line: 5}},
		},
		{
			Kind: manifest.KindWebhook, Direction: manifest.DirectionInboundCallback, TargetURL: "/webhooks/stripe", Confidence: manifest.ConfidenceHigh,
			Locations: []manifest.Location{{File: "routes.go", Line: 12}},
		},
	}

	m, verr, err := Aggregate(findings, manifest.Metadata{ScannerVersion: "test", ScanTimestamp: "2026-07-30T00:00:00Z"}, "")
	require.NoError(t, err)
	require.Nil(t, verr)
	require.Equal(t, 3, m.Metadata.TotalDependenciesFound)
}

func TestAggregate_MinConfidenceDropsWeakerEntries(t *testing.T) {
	findings := []manifest.Finding{
		{Kind: manifest.KindPackage, Name: "requests", Ecosystem: "pypi", CurrentVersion: "unknown", Confidence: manifest.ConfidenceMedium},
		{Kind: manifest.KindPackage, Name: "stripe", Ecosystem: "pypi", CurrentVersion: "7.0.0", Confidence: manifest.ConfidenceHigh},
		{
			Kind: manifest.KindAPI, URL: "https://example.com", Method: "GET", Confidence: manifest.ConfidenceLow,
			Locations: []manifest.Location{{File: "a.go", Line: 1}},
		},
	}

	m, verr, err := Aggregate(findings, manifest.Metadata{ScannerVersion: "test", ScanTimestamp: "2026-07-30T00:00:00Z"}, manifest.ConfidenceHigh)
	require.NoError(t, err)
	require.Nil(t, verr)
	require.Len(t, m.Packages, 1)
	require.Equal(t, "stripe", m.Packages[0].Name)
	require.Empty(t, m.APIs)
	require.Equal(t, 1, m.Metadata.TotalDependenciesFound)
}
