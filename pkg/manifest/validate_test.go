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

package manifest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validManifest() *Manifest {
	return &Manifest{
		Version: "1.0",
		Metadata: Metadata{
			ScanTimestamp:          time.Now().UTC().Format(time.RFC3339),
			ScannerVersion:         "test",
			LanguagesDetected:      []string{"python"},
			TotalDependenciesFound: 1,
		},
		Packages: []PackageEntry{
			{
				Name:           "stripe",
				Ecosystem:      "pypi",
				CurrentVersion: "7.1.0",
				Confidence:     ConfidenceHigh,
				ManifestFile:   "requirements.txt",
			},
		},
		APIs:           []APIEntry{},
		SDKs:           []SDKEntry{},
		Infrastructure: []InfrastructureEntry{},
		Webhooks:       []WebhookEntry{},
	}
}

func TestValidate_AcceptsWellFormedManifest(t *testing.T) {
	m := validManifest()
	require.Nil(t, Validate(m))
}

func TestValidate_RejectsBadVersion(t *testing.T) {
	m := validManifest()
	m.Version = "1"
	ve := Validate(m)
	require.NotNil(t, ve)
	require.Contains(t, ve.Message, "version")
}

func TestValidate_RejectsLineBelowOne(t *testing.T) {
	m := validManifest()
	m.APIs = []APIEntry{{
		URL:        "https://api.stripe.com/v1/charges",
		Method:     "GET",
		Confidence: ConfidenceHigh,
		UsageCount: 1,
		Locations:  []Location{{File: "a.py", Line: 0}},
	}}
	m.Metadata.TotalDependenciesFound = 2
	ve := Validate(m)
	require.NotNil(t, ve)
}

func TestValidate_RejectsDisallowedURLPrefix(t *testing.T) {
	m := validManifest()
	m.APIs = []APIEntry{{
		URL:        "ftp://example.com/x",
		Method:     "GET",
		Confidence: ConfidenceHigh,
		UsageCount: 1,
		Locations:  []Location{{File: "a.py", Line: 1}},
	}}
	m.Metadata.TotalDependenciesFound = 2
	ve := Validate(m)
	require.NotNil(t, ve)
}

func TestValidate_TruncatesIssuesAfterFive(t *testing.T) {
	m := validManifest()
	m.Version = "bad"
	for i := 0; i < 6; i++ {
		m.APIs = append(m.APIs, APIEntry{URL: "notaurl", Confidence: "bogus"})
	}
	ve := Validate(m)
	require.NotNil(t, ve)
	require.Contains(t, ve.Message, "…and")
	require.Greater(t, len(ve.Issues), 5)
}

func TestParse_RoundTrip(t *testing.T) {
	m := validManifest()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	parsed, ve, err := Parse(data)
	require.NoError(t, err)
	require.Nil(t, ve)
	require.Equal(t, m.Packages[0].Name, parsed.Packages[0].Name)
}

func TestParseFromString_EnforcesByteCap(t *testing.T) {
	_, _, err := ParseFromString("{}", 1)
	require.Error(t, err)
}
