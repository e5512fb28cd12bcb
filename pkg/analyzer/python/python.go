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

// Package python implements the source-file analyzer for Python:
// requests/httpx call sites, stripe/twilio/boto3/openai SDK
// imports, psycopg2/redis/pymongo/kafka connection idioms, and Flask/
// Django webhook routes.
package python

import (
	"regexp"

	"github.com/kraklabs/depscan/pkg/analyzer/common"
	"github.com/kraklabs/depscan/pkg/manifest"
	"github.com/kraklabs/depscan/pkg/plugin"
)

// Language is this plugin's language tag.
const Language = "python"

var catalogue = common.Catalogue{
	Language: Language,
	CommentSyntax: common.CommentSyntax{
		Line: "#",
	},
	SkipReceivers: map[string]bool{
		"self": true, "response": true, "os": true,
	},
	HTTP: []common.HTTPPattern{
		{
			Regex:         regexp.MustCompile(`requests\.(get|post|put|patch|delete)\(\s*["']([^"']+)["']`),
			MethodGroup:   1,
			URLGroup:      2,
			DefaultMethod: "GET",
		},
		{
			Regex:         regexp.MustCompile(`(\w+)\.(get|post|put|patch|delete)\(\s*["']([^"']+)["']`),
			ReceiverGroup: 1,
			MethodGroup:   2,
			URLGroup:      3,
			DefaultMethod: "GET",
		},
		{
			Regex:         regexp.MustCompile(`urlopen\(\s*["']([^"']+)["']`),
			URLGroup:      1,
			DefaultMethod: "GET",
		},
	},
	SDKs: []common.SDKPattern{
		{
			Provider:         "stripe",
			SDKPackage:       "stripe",
			ImportRegex:      regexp.MustCompile(`^\s*import\s+stripe\b`),
			ConstructorRegex: regexp.MustCompile(`stripe\.(\w+)\.\w+\(`),
			ServiceGroup:     1,
		},
		{
			Provider:         "twilio",
			SDKPackage:       "twilio",
			ImportRegex:      regexp.MustCompile(`from\s+twilio\.rest\s+import\s+Client`),
			ConstructorRegex: regexp.MustCompile(`Client\(`),
		},
		{
			Provider:         "aws",
			SDKPackage:       "boto3",
			ImportRegex:      regexp.MustCompile(`^\s*import\s+boto3\b`),
			ConstructorRegex: regexp.MustCompile(`boto3\.(?:client|resource)\(\s*["'](\w+)["']`),
			ServiceGroup:     1,
		},
		{
			Provider:         "openai",
			SDKPackage:       "openai",
			ImportRegex:      regexp.MustCompile(`^\s*import\s+openai\b|from\s+openai\s+import`),
			ConstructorRegex: regexp.MustCompile(`OpenAI\(`),
		},
		{
			Provider:         "sendgrid",
			SDKPackage:       "sendgrid",
			ImportRegex:      regexp.MustCompile(`^\s*import\s+sendgrid\b`),
			ConstructorRegex: regexp.MustCompile(`SendGridAPIClient\(`),
		},
	},
	Infra: []common.InfraPattern{
		{
			Type:       "postgresql",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`["'](postgres(?:ql)?://[^"']+)["']`),
			ValueGroup: 1,
		},
		{
			Type:       "mysql",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`["'](mysql://[^"']+)["']`),
			ValueGroup: 1,
		},
		{
			Type:       "redis",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`["'](redis://[^"']+)["']`),
			ValueGroup: 1,
		},
		{
			Type:       "mongodb",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`["'](mongodb(?:\+srv)?://[^"']+)["']`),
			ValueGroup: 1,
		},
		{
			Type:  "kafka",
			Kind:  common.InfraKindURL,
			Regex: regexp.MustCompile(`KafkaProducer\(|KafkaConsumer\(`),
			Kafka: true,
		},
		{
			Type:       "",
			Kind:       common.InfraKindEnvLookup,
			Regex:      regexp.MustCompile(`os\.environ(?:\.get)?\(\s*["']([A-Z0-9_]*(?:DATABASE|DB|REDIS|QUEUE|BROKER|MONGO)[A-Z0-9_]*)["']`),
			ValueGroup: 1,
		},
	},
	Webhooks: []common.WebhookPattern{
		{
			Direction: manifest.DirectionInboundCallback,
			Regex:     regexp.MustCompile(`@(?:app|blueprint)\.route\(\s*["'](/[^"']*webhook[^"']*)["']`),
			URLGroup:  1,
		},
		{
			Direction: manifest.DirectionOutboundRegistration,
			Regex:     regexp.MustCompile(`register_webhook\(\s*["']([^"']+)["']`),
			URLGroup:  1,
		},
	},
}

// Plugin implements plugin.Plugin for Python source files.
type Plugin struct{}

// New returns the Python analyzer plugin.
func New() *Plugin { return &Plugin{} }

// Language implements plugin.Plugin.
func (p *Plugin) Language() string { return Language }

// Extensions implements plugin.Plugin.
func (p *Plugin) Extensions() []string { return []string{".py"} }

// Analyze implements plugin.Plugin.
func (p *Plugin) Analyze(ctx plugin.SourceContext) ([]manifest.Finding, error) {
	return common.Run(catalogue, ctx.FilePath, ctx.SourceText, ctx.ResolvedEnv), nil
}

var _ plugin.Plugin = (*Plugin)(nil)
