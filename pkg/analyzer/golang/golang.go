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

// Package golang implements the source-file analyzer for Go, the
// dominant language of the retrieval pack this scanner was itself
// built against. The catalogue below is grounded in the actual
// call idioms seen across the pack: net/http clients, Stripe/Twilio/
// AWS/OpenAI SDK constructors, sqlx/pgx/redis/kafka connection strings.
package golang

import (
	"regexp"

	"github.com/kraklabs/depscan/pkg/analyzer/common"
	"github.com/kraklabs/depscan/pkg/manifest"
	"github.com/kraklabs/depscan/pkg/plugin"
)

// Language is this plugin's language tag.
const Language = "go"

var catalogue = common.Catalogue{
	Language: Language,
	CommentSyntax: common.CommentSyntax{
		Line:       "//",
		BlockStart: "/*",
		BlockEnd:   "*/",
	},
	SkipReceivers: map[string]bool{
		"os": true, "self": true, "response": true, "w": true, "rw": true,
	},
	HTTP: []common.HTTPPattern{
		{
			Regex:         regexp.MustCompile(`http\.(Get|Post|Head)\(\s*"([^"]+)"`),
			URLGroup:      2,
			MethodGroup:   1,
			DefaultMethod: "GET",
		},
		{
			Regex:         regexp.MustCompile(`http\.NewRequest\(\s*"([A-Za-z]+)"\s*,\s*"([^"]+)"`),
			URLGroup:      2,
			MethodGroup:   1,
			DefaultMethod: "GET",
		},
		{
			Regex:         regexp.MustCompile(`(\w+)\.(Get|Post|Put|Patch|Delete)\(\s*"([^"]+)"`),
			ReceiverGroup: 1,
			MethodGroup:   2,
			URLGroup:      3,
			DefaultMethod: "GET",
		},
	},
	SDKs: []common.SDKPattern{
		{
			Provider:         "stripe",
			SDKPackage:       "github.com/stripe/stripe-go",
			ImportRegex:      regexp.MustCompile(`"github\.com/stripe/stripe-go`),
			ConstructorRegex: regexp.MustCompile(`stripe\.(\w+)\.\w+\(`),
			ServiceGroup:     1,
		},
		{
			Provider:         "twilio",
			SDKPackage:       "github.com/twilio/twilio-go",
			ImportRegex:      regexp.MustCompile(`"github\.com/twilio/twilio-go`),
			ConstructorRegex: regexp.MustCompile(`twilio\.New(\w+)Client`),
			ServiceGroup:     1,
		},
		{
			Provider:         "aws",
			SDKPackage:       "github.com/aws/aws-sdk-go-v2",
			ImportRegex:      regexp.MustCompile(`"github\.com/aws/aws-sdk-go-v2`),
			ConstructorRegex: regexp.MustCompile(`(\w+)\.NewFromConfig\(`),
			ServiceGroup:     1,
		},
		{
			Provider:         "openai",
			SDKPackage:       "github.com/sashabaranov/go-openai",
			ImportRegex:      regexp.MustCompile(`"github\.com/sashabaranov/go-openai"`),
			ConstructorRegex: regexp.MustCompile(`openai\.New(\w*)Client`),
			ServiceGroup:     1,
		},
		{
			Provider:         "slack",
			SDKPackage:       "github.com/slack-go/slack",
			ImportRegex:      regexp.MustCompile(`"github\.com/slack-go/slack"`),
			ConstructorRegex: regexp.MustCompile(`slack\.New\(`),
		},
	},
	Infra: []common.InfraPattern{
		{
			Type:       "postgresql",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`"(postgres(?:ql)?://[^"]+)"`),
			ValueGroup: 1,
		},
		{
			Type:       "mysql",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`"(mysql://[^"]+)"`),
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
			Type:       "s3",
			Kind:       common.InfraKindURL,
			Regex:      regexp.MustCompile(`"(s3://[^"]+)"`),
			ValueGroup: 1,
		},
		{
			Type:  "kafka",
			Kind:  common.InfraKindURL,
			Regex: regexp.MustCompile(`kafka\.(?:NewReader|NewWriter|NewConsumer|NewProducer)\(`),
			Kafka: true,
		},
		{
			Type:       "",
			Kind:       common.InfraKindEnvLookup,
			Regex:      regexp.MustCompile(`os\.Getenv\(\s*"([A-Z0-9_]*(?:DATABASE|DB|REDIS|QUEUE|BROKER|MONGO)[A-Z0-9_]*)"\s*\)`),
			ValueGroup: 1,
		},
	},
	Webhooks: []common.WebhookPattern{
		{
			Direction: manifest.DirectionInboundCallback,
			Regex:     regexp.MustCompile(`(?:router|mux|r|engine)\.(?:POST|Handle(?:Func)?)\(\s*"(/[^"]*webhook[^"]*)"`),
			URLGroup:  1,
		},
		{
			Direction: manifest.DirectionOutboundRegistration,
			Regex:     regexp.MustCompile(`RegisterWebhook\(\s*"([^"]+)"`),
			URLGroup:  1,
		},
	},
}

// Plugin implements plugin.Plugin for Go source files.
type Plugin struct{}

// New returns the Go analyzer plugin.
func New() *Plugin { return &Plugin{} }

// Language implements plugin.Plugin.
func (p *Plugin) Language() string { return Language }

// Extensions implements plugin.Plugin.
func (p *Plugin) Extensions() []string { return []string{".go"} }

// Analyze implements plugin.Plugin.
func (p *Plugin) Analyze(ctx plugin.SourceContext) ([]manifest.Finding, error) {
	return common.Run(catalogue, ctx.FilePath, ctx.SourceText, ctx.ResolvedEnv), nil
}

var _ plugin.Plugin = (*Plugin)(nil)
