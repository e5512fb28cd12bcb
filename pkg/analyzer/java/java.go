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

// Package java implements the source-file analyzer for Java:
// RestTemplate/HttpClient call sites, Stripe/Twilio/AWS SDK
// constructors, JDBC connection strings (sub-typed by dialect) and
// Kafka bootstrap.servers, and Spring webhook mappings.
package java

import (
	"regexp"

	"github.com/kraklabs/depscan/pkg/analyzer/common"
	"github.com/kraklabs/depscan/pkg/manifest"
	"github.com/kraklabs/depscan/pkg/plugin"
)

// Language is this plugin's language tag.
const Language = "java"

var catalogue = common.Catalogue{
	Language: Language,
	CommentSyntax: common.CommentSyntax{
		Line:       "//",
		BlockStart: "/*",
		BlockEnd:   "*/",
	},
	SkipReceivers: map[string]bool{
		"this": true, "self": true, "response": true,
	},
	HTTP: []common.HTTPPattern{
		{
			Regex:         regexp.MustCompile(`restTemplate\.(getForObject|postForObject|put|delete|exchange)\(\s*"([^"]+)"`),
			MethodGroup:   1,
			URLGroup:      2,
			DefaultMethod: "GET",
		},
		{
			Regex:         regexp.MustCompile(`HttpRequest\.newBuilder\(\s*\)\s*\.uri\(\s*URI\.create\(\s*"([^"]+)"`),
			URLGroup:      1,
			DefaultMethod: "GET",
		},
	},
	SDKs: []common.SDKPattern{
		{
			Provider:         "stripe",
			SDKPackage:       "com.stripe:stripe-java",
			ImportRegex:      regexp.MustCompile(`import\s+com\.stripe\.`),
			ConstructorRegex: regexp.MustCompile(`(\w+)\.create\(`),
			ServiceGroup:     1,
		},
		{
			Provider:         "twilio",
			SDKPackage:       "com.twilio.sdk:twilio",
			ImportRegex:      regexp.MustCompile(`import\s+com\.twilio\.`),
			ConstructorRegex: regexp.MustCompile(`Twilio\.init\(`),
		},
		{
			Provider:         "aws",
			SDKPackage:       "software.amazon.awssdk",
			ImportRegex:      regexp.MustCompile(`import\s+software\.amazon\.awssdk\.services\.(\w+)`),
			ConstructorRegex: regexp.MustCompile(`(\w+)Client\.builder\(\)`),
			ServiceGroup:     1,
		},
	},
	Infra: []common.InfraPattern{
		{
			Type:       "jdbc",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`"(jdbc:[^"]+)"`),
			ValueGroup: 1,
		},
		{
			Type:       "redis",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`"(redis://[^"]+)"`),
			ValueGroup: 1,
		},
		{
			Type:       "mongodb",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`"(mongodb(?:\+srv)?://[^"]+)"`),
			ValueGroup: 1,
		},
		{
			Type:  "kafka",
			Kind:  common.InfraKindURL,
			Regex: regexp.MustCompile(`new\s+KafkaProducer\(|new\s+KafkaConsumer\(`),
			Kafka: true,
		},
		{
			Type:       "",
			Kind:       common.InfraKindEnvLookup,
			Regex:      regexp.MustCompile(`System\.getenv\(\s*"([A-Z0-9_]*(?:DATABASE|DB|REDIS|QUEUE|BROKER|MONGO)[A-Z0-9_]*)"\s*\)`),
			ValueGroup: 1,
		},
	},
	Webhooks: []common.WebhookPattern{
		{
			Direction: manifest.DirectionInboundCallback,
			Regex:     regexp.MustCompile(`@PostMapping\(\s*"(/[^"]*webhook[^"]*)"`),
			URLGroup:  1,
		},
		{
			Direction: manifest.DirectionOutboundRegistration,
			Regex:     regexp.MustCompile(`registerWebhook\(\s*"([^"]+)"`),
			URLGroup:  1,
		},
	},
}

// Plugin implements plugin.Plugin for Java source files.
type Plugin struct{}

// New returns the Java analyzer plugin.
func New() *Plugin { return &Plugin{} }

// Language implements plugin.Plugin.
func (p *Plugin) Language() string { return Language }

// Extensions implements plugin.Plugin.
func (p *Plugin) Extensions() []string { return []string{".java"} }

// Analyze implements plugin.Plugin.
func (p *Plugin) Analyze(ctx plugin.SourceContext) ([]manifest.Finding, error) {
	return common.Run(catalogue, ctx.FilePath, ctx.SourceText, ctx.ResolvedEnv), nil
}

var _ plugin.Plugin = (*Plugin)(nil)
