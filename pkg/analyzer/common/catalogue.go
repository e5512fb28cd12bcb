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

import "regexp"

// CommentSyntax describes how a language spells single-line and block
// comments, so the shared engine can strip them before pattern
// matching. An empty field disables that comment style.
type CommentSyntax struct {
	Line       string // e.g. "//" or "#"
	BlockStart string // e.g. "/*"; empty if the language has none
	BlockEnd   string // e.g. "*/"
}

// HTTPPattern matches one call-site idiom for an outbound HTTP
// request, e.g. Go's http.Get, Python's requests.get, JS's fetch.
type HTTPPattern struct {
	Regex         *regexp.Regexp
	URLGroup      int    // capture group holding the URL literal/template
	MethodGroup   int    // capture group holding the method, or 0 if fixed
	DefaultMethod string // used when MethodGroup is 0 or doesn't match
	// ReceiverGroup, if set, captures the call's receiver name so it
	// can be checked against Catalogue.SkipReceivers.
	ReceiverGroup int
}

// SDKPattern recognises an import of a known third-party SDK package.
// Matched once per file against the import block; repeated
// constructor call sites enrich the same finding.
type SDKPattern struct {
	Provider        string
	SDKPackage      string
	ImportRegex     *regexp.Regexp
	ConstructorRegex *regexp.Regexp // optional: scanned per-line for services_used/api_methods
	ServiceGroup    int             // capture group on ConstructorRegex naming the service/method used
}

// InfraKind distinguishes the two infrastructure-finding shapes: a
// literal connection URL, versus an env-var lookup naming one.
type InfraKind int

const (
	InfraKindURL InfraKind = iota
	InfraKindEnvLookup
)

// InfraPattern matches an infrastructure client construction site.
// Type may be overridden by dialect sub-typing (JDBC) at match time.
type InfraPattern struct {
	Type     string
	Kind     InfraKind
	Regex    *regexp.Regexp
	ValueGroup int // capture group holding the URL or the env-var name
	// Kafka is true for broker-client constructors that should trigger
	// the backward bootstrap.servers scan instead of using
	// ValueGroup directly.
	Kafka bool
}

// WebhookPattern matches a webhook registration (outbound) or inbound
// callback route declaration.
type WebhookPattern struct {
	Direction string // "outbound_registration" or "inbound_callback"
	Regex     *regexp.Regexp
	URLGroup  int
}

// Catalogue is one language's full set of recognised idioms.
type Catalogue struct {
	Language      string
	CommentSyntax CommentSyntax
	HTTP          []HTTPPattern
	SDKs          []SDKPattern
	Infra         []InfraPattern
	Webhooks      []WebhookPattern
	// SkipReceivers names call receivers that never count as HTTP
	// clients even when a pattern would otherwise match, e.g. "os",
	// "self", "response".
	SkipReceivers map[string]bool
}

// jdbcDialects sub-types a jdbc: URL by its driver prefix.
var jdbcDialects = []struct {
	prefix string
	dialect string
}{
	{"jdbc:postgresql:", "postgresql"},
	{"jdbc:mysql:", "mysql"},
	{"jdbc:sqlserver:", "sqlserver"},
	{"jdbc:oracle:", "oracle"},
	{"jdbc:mariadb:", "mariadb"},
	{"jdbc:h2:", "h2"},
	{"jdbc:sqlite:", "sqlite"},
}

// jdbcDialect returns the sub-typed dialect name for a jdbc: URL, or
// "" if url is not a recognised jdbc: URL.
func jdbcDialect(url string) string {
	for _, d := range jdbcDialects {
		if len(url) >= len(d.prefix) && url[:len(d.prefix)] == d.prefix {
			return d.dialect
		}
	}
	return ""
}
