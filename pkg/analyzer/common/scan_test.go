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

package common

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/depscan/pkg/manifest"
)

func TestStripComments_HandlesLineAndBlockComments(t *testing.T) {
	syntax := CommentSyntax{Line: "//", BlockStart: "/*", BlockEnd: "*/"}
	lines := []string{
		`call("a") // call("b")`,
		`/* start`,
		`still commented call("c")`,
		`end */ call("d")`,
	}
	out := StripComments(lines, syntax)
	require.Contains(t, out[0], `call("a")`)
	require.NotContains(t, out[0], `call("b")`)
	require.Empty(t, out[1])
	require.Empty(t, out[2])
	require.Contains(t, out[3], `call("d")`)
}

func TestStripComments_IgnoresCommentMarkersInsideStrings(t *testing.T) {
	syntax := CommentSyntax{Line: "//"}
	lines := []string{`url := "http://example.com" // real comment`}
	out := StripComments(lines, syntax)
	require.Contains(t, out[0], `"http://example.com"`)
	require.NotContains(t, out[0], "real comment")
}

func TestRun_KafkaBackwardScanFindsBootstrapServers(t *testing.T) {
	cat := Catalogue{
		Infra: []InfraPattern{
			{Type: "kafka", Kind: InfraKindURL, Regex: regexp.MustCompile(`NewProducer\(`), Kafka: true},
		},
	}
	src := "bootstrap.servers = \"broker1:9092\"\nsomeOtherLine()\nNewProducer()\n"
	findings := Run(cat, "app.go", src, nil)
	require.Len(t, findings, 1)
	require.Equal(t, "kafka", findings[0].Type)
	require.Equal(t, "broker1:9092", findings[0].ConnectionRef)
}

func TestRun_KafkaBackwardScanGivesUpBeyondLookback(t *testing.T) {
	cat := Catalogue{
		Infra: []InfraPattern{
			{Type: "kafka", Kind: InfraKindURL, Regex: regexp.MustCompile(`NewProducer\(`), Kafka: true},
		},
	}
	src := "bootstrap.servers = \"broker1:9092\"\n"
	for i := 0; i < 20; i++ {
		src += "noise()\n"
	}
	src += "NewProducer()\n"
	findings := Run(cat, "app.go", src, nil)
	require.Empty(t, findings)
}

func TestRun_SameLineSuppressesLaterCategoryMatch(t *testing.T) {
	cat := Catalogue{
		HTTP: []HTTPPattern{
			{Regex: regexp.MustCompile(`first\("([^"]+)"\)`), URLGroup: 1, DefaultMethod: "GET"},
			{Regex: regexp.MustCompile(`first\("([^"]+)"\).*second`), URLGroup: 1, DefaultMethod: "POST"},
		},
	}
	src := `first("https://example.com/a") // second`
	findings := Run(cat, "f.go", src, nil)
	require.Len(t, findings, 1)
	require.Equal(t, manifest.KindAPI, findings[0].Kind)
	require.Equal(t, "GET", findings[0].Method)
}
