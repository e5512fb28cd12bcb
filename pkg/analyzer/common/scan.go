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
	"strings"

	"github.com/kraklabs/depscan/pkg/envresolver"
	"github.com/kraklabs/depscan/pkg/manifest"
)

// kafkaBootstrapLookback bounds the backward scan for a
// "bootstrap.servers" assignment.
const kafkaBootstrapLookback = 15

var bootstrapServersPattern = regexp.MustCompile(`bootstrap\.servers["']?\s*[:=]\s*["']?([^"'\s,}]+)`)

// StripComments blanks out single-line and (carried across lines)
// block comment text, and leaves string literal contents untouched so
// a "//" inside a string is not mistaken for a comment. It is the
// generalisation of the ingestion pipeline's findGoCalls character
// scanner from "skip comments while extracting calls" to "produce a
// comment-free line array any catalogue can match against".
func StripComments(lines []string, syntax CommentSyntax) []string {
	out := make([]string, len(lines))
	inBlock := false

	for i, line := range lines {
		if syntax.Line == "" && syntax.BlockStart == "" {
			out[i] = line
			continue
		}

		var b strings.Builder
		inString := false
		var quote byte
		j := 0
		for j < len(line) {
			c := line[j]

			if inBlock {
				if syntax.BlockEnd != "" && strings.HasPrefix(line[j:], syntax.BlockEnd) {
					inBlock = false
					j += len(syntax.BlockEnd)
					continue
				}
				j++
				continue
			}

			if inString {
				b.WriteByte(c)
				if c == '\\' && j+1 < len(line) {
					j++
					b.WriteByte(line[j])
					j++
					continue
				}
				if c == quote {
					inString = false
				}
				j++
				continue
			}

			if c == '"' || c == '\'' || c == '`' {
				inString = true
				quote = c
				b.WriteByte(c)
				j++
				continue
			}

			if syntax.Line != "" && strings.HasPrefix(line[j:], syntax.Line) {
				break
			}
			if syntax.BlockStart != "" && strings.HasPrefix(line[j:], syntax.BlockStart) {
				inBlock = true
				j += len(syntax.BlockStart)
				continue
			}

			b.WriteByte(c)
			j++
		}
		out[i] = b.String()
	}
	return out
}

// findingKey suppresses a later emission on the same (line, category)
// once an earlier pattern in this analyzer has already claimed it.
type findingKey struct {
	line     int
	category string
}

// Run executes one language's Catalogue against sourceText, producing
// the api/sdk/infrastructure/webhook findings it matches. filePath is
// relative to scanRoot and is used verbatim as every emitted
// Location.File.
func Run(cat Catalogue, filePath, sourceText string, resolver *envresolver.Resolver) []manifest.Finding {
	rawLines := strings.Split(sourceText, "\n")
	lines := StripComments(rawLines, cat.CommentSyntax)

	var findings []manifest.Finding
	claimed := make(map[findingKey]bool)
	sdkIndex := make(map[string]int) // provider -> index into findings

	scanImports(cat, filePath, rawLines, &findings, sdkIndex)

	for i, line := range lines {
		lineNum := i + 1

		for _, hp := range cat.HTTP {
			m := hp.Regex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			key := findingKey{lineNum, "http"}
			if claimed[key] {
				continue
			}
			if hp.ReceiverGroup > 0 && cat.SkipReceivers[groupOrEmpty(m, hp.ReceiverGroup)] {
				continue
			}
			raw := groupOrEmpty(m, hp.URLGroup)
			if raw == "" {
				continue
			}
			method := hp.DefaultMethod
			if hp.MethodGroup > 0 {
				if g := groupOrEmpty(m, hp.MethodGroup); g != "" {
					method = strings.ToUpper(g)
				}
			}
			url, confidence := resolveAndGrade(resolver, raw)
			claimed[key] = true
			findings = append(findings, manifest.Finding{
				Kind:       manifest.KindAPI,
				URL:        url,
				Method:     strings.ToUpper(method),
				Confidence: confidence,
				Locations:  []manifest.Location{newLocation(filePath, lineNum, rawLines[i])},
			})
		}

		for _, ip := range cat.Infra {
			m := ip.Regex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			key := findingKey{lineNum, "infra"}
			if claimed[key] {
				continue
			}

			infraType := ip.Type
			var connRef string
			var confidence manifest.Confidence

			switch {
			case ip.Kafka:
				value, found := scanBootstrapServersBackward(lines, i)
				if !found {
					continue
				}
				connRef, confidence = resolveAndGrade(resolver, value)
				infraType = "kafka"
			case ip.Kind == InfraKindEnvLookup:
				name := groupOrEmpty(m, ip.ValueGroup)
				if name == "" {
					continue
				}
				connRef = name
				confidence = manifest.ConfidenceMedium
			default:
				raw := groupOrEmpty(m, ip.ValueGroup)
				if raw == "" {
					continue
				}
				connRef, confidence = resolveAndGrade(resolver, raw)
				if dialect := jdbcDialect(raw); dialect != "" {
					infraType = dialect
				}
			}

			claimed[key] = true
			findings = append(findings, manifest.Finding{
				Kind:          manifest.KindInfrastructure,
				Type:          infraType,
				ConnectionRef: connRef,
				Confidence:    confidence,
				Locations:     []manifest.Location{newLocation(filePath, lineNum, rawLines[i])},
			})
		}

		for _, wp := range cat.Webhooks {
			m := wp.Regex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			key := findingKey{lineNum, "webhook"}
			if claimed[key] {
				continue
			}
			raw := groupOrEmpty(m, wp.URLGroup)
			if raw == "" {
				continue
			}
			allowSlash := wp.Direction == "inbound_callback"
			url, confidence := resolveAndGrade(resolver, raw)
			if allowSlash && strings.HasPrefix(raw, "/") {
				url = envresolver.Redact(raw)
				confidence = manifest.ConfidenceHigh
			}
			claimed[key] = true
			findings = append(findings, manifest.Finding{
				Kind:       manifest.KindWebhook,
				Direction:  wp.Direction,
				TargetURL:  url,
				Confidence: confidence,
				Locations:  []manifest.Location{newLocation(filePath, lineNum, rawLines[i])},
			})
		}

		for si, sp := range cat.SDKs {
			if sp.ConstructorRegex == nil {
				continue
			}
			m := sp.ConstructorRegex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			idx, ok := sdkIndex[sp.Provider]
			if !ok {
				// No import was seen for this provider; skip rather
				// than invent an SDK finding from a bare constructor.
				continue
			}
			_ = si
			f := &findings[idx]
			f.Locations = append(f.Locations, newLocation(filePath, lineNum, rawLines[i]))
			if sp.ServiceGroup > 0 {
				if svc := groupOrEmpty(m, sp.ServiceGroup); svc != "" {
					if !contains(f.ServicesUsed, svc) {
						f.ServicesUsed = append(f.ServicesUsed, svc)
					}
					if !contains(f.APIMethods, svc) {
						f.APIMethods = append(f.APIMethods, svc)
					}
				}
			}
		}
	}

	for i := range findings {
		findings[i].Locations = manifest.DedupedLocations(findings[i].Locations)
	}
	return findings
}

// scanImports emits one SDK finding per recognised provider import,
// ahead of the line loop.
func scanImports(cat Catalogue, filePath string, rawLines []string, findings *[]manifest.Finding, sdkIndex map[string]int) {
	full := strings.Join(rawLines, "\n")
	for _, sp := range cat.SDKs {
		loc := sp.ImportRegex.FindStringIndex(full)
		if loc == nil {
			continue
		}
		lineNum := 1 + strings.Count(full[:loc[0]], "\n")
		*findings = append(*findings, manifest.Finding{
			Kind:       manifest.KindSDK,
			Provider:   sp.Provider,
			SDKPackage: sp.SDKPackage,
			Confidence: manifest.ConfidenceHigh,
			Locations:  []manifest.Location{newLocation(filePath, lineNum, rawLines[lineNum-1])},
		})
		sdkIndex[sp.Provider] = len(*findings) - 1
	}
}

func scanBootstrapServersBackward(lines []string, fromIdx int) (string, bool) {
	start := fromIdx - kafkaBootstrapLookback
	if start < 0 {
		start = 0
	}
	for i := fromIdx; i >= start; i-- {
		if m := bootstrapServersPattern.FindStringSubmatch(lines[i]); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func resolveAndGrade(resolver *envresolver.Resolver, raw string) (string, manifest.Confidence) {
	if resolver == nil {
		redacted := envresolver.Redact(raw)
		if strings.HasPrefix(redacted, "http://") || strings.HasPrefix(redacted, "https://") {
			return redacted, manifest.ConfidenceHigh
		}
		return redacted, manifest.ConfidenceMedium
	}
	resolved, subConfidence := resolver.ResolveURL(raw)
	switch {
	case strings.HasPrefix(resolved, "http://") || strings.HasPrefix(resolved, "https://"):
		return resolved, manifest.ConfidenceHigh
	case subConfidence == manifest.ConfidenceLow:
		return envresolver.Redact(raw), manifest.ConfidenceLow
	default:
		if resolved == "" {
			resolved = envresolver.Redact(raw)
		}
		return resolved, manifest.ConfidenceMedium
	}
}

func newLocation(file string, line int, rawLine string) manifest.Location {
	context := envresolver.Redact(strings.TrimSpace(rawLine))
	if len(context) > manifest.MaxContextLength {
		context = context[:manifest.MaxContextLength]
	}
	return manifest.Location{File: file, Line: line, Context: context}
}

func groupOrEmpty(m []string, group int) string {
	if group <= 0 || group >= len(m) {
		return ""
	}
	return m[group]
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
