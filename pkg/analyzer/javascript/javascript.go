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

// Package javascript implements the source-file analyzer for
// JavaScript and TypeScript: fetch/axios call sites,
// stripe/twilio/@aws-sdk/openai SDK imports, pg/ioredis/mongodb/
// kafkajs connection idioms, and Express/Next.js webhook routes. Both
// ".js" and ".ts" share one catalogue since the pattern-matching
// approach does not distinguish the two at the syntax it inspects.
package javascript

import (
	"regexp"

	"github.com/kraklabs/depscan/pkg/analyzer/common"
	"github.com/kraklabs/depscan/pkg/manifest"
	"github.com/kraklabs/depscan/pkg/plugin"
)

// Language is this plugin's language tag.
const Language = "javascript"

var catalogue = common.Catalogue{
	Language: Language,
	CommentSyntax: common.CommentSyntax{
		Line:       "//",
		BlockStart: "/*",
		BlockEnd:   "*/",
	},
	SkipReceivers: map[string]bool{
		"res": true, "response": true, "self": true,
	},
	HTTP: []common.HTTPPattern{
		{
			Regex:         regexp.MustCompile(`fetch\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`),
			URLGroup:      1,
			DefaultMethod: "GET",
		},
		{
			Regex:         regexp.MustCompile(`axios\.(get|post|put|patch|delete)\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`),
			MethodGroup:   1,
			URLGroup:      2,
			DefaultMethod: "GET",
		},
		{
			Regex:         regexp.MustCompile(`(\w+)\.(get|post|put|patch|delete)\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`),
			ReceiverGroup: 1,
			MethodGroup:   2,
			URLGroup:      3,
			DefaultMethod: "GET",
		},
	},
	SDKs: []common.SDKPattern{
		{
			Provider:         "stripe",
			SDKPackage:       "stripe",
			ImportRegex:      regexp.MustCompile(`require\(["']stripe["']\)|from\s+["']stripe["']`),
			ConstructorRegex: regexp.MustCompile(`stripe\.(\w+)\.\w+\(`),
			ServiceGroup:     1,
		},
		{
			Provider:         "twilio",
			SDKPackage:       "twilio",
			ImportRegex:      regexp.MustCompile(`require\(["']twilio["']\)|from\s+["']twilio["']`),
			ConstructorRegex: regexp.MustCompile(`twilio\(`),
		},
		{
			Provider:         "aws",
			SDKPackage:       "@aws-sdk/client-*",
			ImportRegex:      regexp.MustCompile(`from\s+["']@aws-sdk/client-(\w+)["']`),
			ConstructorRegex: regexp.MustCompile(`new\s+(\w+)Client\(`),
			ServiceGroup:     1,
		},
		{
			Provider:         "openai",
			SDKPackage:       "openai",
			ImportRegex:      regexp.MustCompile(`require\(["']openai["']\)|from\s+["']openai["']`),
			ConstructorRegex: regexp.MustCompile(`new\s+OpenAI\(`),
		},
		{
			Provider:         "sendgrid",
			SDKPackage:       "@sendgrid/mail",
			ImportRegex:      regexp.MustCompile(`require\(["']@sendgrid/mail["']\)|from\s+["']@sendgrid/mail["']`),
			ConstructorRegex: regexp.MustCompile(`sgMail\.`),
		},
	},
	Infra: []common.InfraPattern{
		{
			Type:       "postgresql",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`["'` + "`" + `](postgres(?:ql)?://[^"'` + "`" + `]+)["'` + "`" + `]`),
			ValueGroup: 1,
		},
		{
			Type:       "redis",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`["'` + "`" + `](redis://[^"'` + "`" + `]+)["'` + "`" + `]`),
			ValueGroup: 1,
		},
		{
			Type:       "mongodb",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`["'` + "`" + `](mongodb(?:\+srv)?://[^"'` + "`" + `]+)["'` + "`" + `]`),
			ValueGroup: 1,
		},
		{
			Type:  "kafka",
			Kind:  common.InfraKindURL,
			Regex: regexp.MustCompile(`new\s+Kafka\(`),
			Kafka: true,
		},
		{
			Type:       "",
			Kind:       common.InfraKindEnvLookup,
			Regex:      regexp.MustCompile(`process\.env\.([A-Z0-9_]*(?:DATABASE|DB|REDIS|QUEUE|BROKER|MONGO)[A-Z0-9_]*)`),
			ValueGroup: 1,
		},
	},
	Webhooks: []common.WebhookPattern{
		{
			Direction: manifest.DirectionInboundCallback,
			Regex:     regexp.MustCompile(`(?:app|router)\.post\(\s*["'` + "`" + `](/[^"'` + "`" + `]*webhook[^"'` + "`" + `]*)["'` + "`" + `]`),
			URLGroup:  1,
		},
		{
			Direction: manifest.DirectionOutboundRegistration,
			Regex:     regexp.MustCompile(`registerWebhook\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`),
			URLGroup:  1,
		},
	},
}

// Plugin implements plugin.Plugin for JavaScript/TypeScript source files.
type Plugin struct{}

// New returns the JavaScript analyzer plugin.
func New() *Plugin { return &Plugin{} }

// Language implements plugin.Plugin.
func (p *Plugin) Language() string { return Language }

// Extensions implements plugin.Plugin.
func (p *Plugin) Extensions() []string { return []string{".js", ".jsx", ".ts", ".tsx"} }

// Analyze implements plugin.Plugin.
func (p *Plugin) Analyze(ctx plugin.SourceContext) ([]manifest.Finding, error) {
	return common.Run(catalogue, ctx.FilePath, ctx.SourceText, ctx.ResolvedEnv), nil
}

var _ plugin.Plugin = (*Plugin)(nil)
