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

import "strconv"

// Bound constants enforced by the schema and by the validator's
// explicit checks (see validate.go).
const (
	MaxNameLength    = 256
	MaxURLLength     = 2048
	MaxFileLength    = 4096
	MaxContextLength = 512
	MaxLocations     = 1000
	MaxListLength    = 10000

	// DefaultMaxParseBytes is the byte-length cap parse_from_string
	// enforces before attempting to decode JSON, guarding against
	// decompression/parse amplification.
	DefaultMaxParseBytes = 50 * 1024 * 1024

	// SchemaVersion is the manifest's fixed top-level "version" value.
	SchemaVersion = "1.0"
)

// Confidence is a three-level qualitative hint on how strongly the
// evidence behind a finding or entry supports it.
type Confidence string

// Recognised confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Kind discriminates the five finding/entry variants.
type Kind string

// Recognised finding kinds.
const (
	KindPackage        Kind = "package"
	KindAPI            Kind = "api"
	KindSDK            Kind = "sdk"
	KindInfrastructure Kind = "infrastructure"
	KindWebhook        Kind = "webhook"
)

// Webhook directions.
const (
	DirectionOutboundRegistration = "outbound_registration"
	DirectionInboundCallback      = "inbound_callback"
)

// Location pins a finding to a source position. Context is a short
// surrounding-code snippet, Usage an optional tag such as "constructor"
// or "call".
type Location struct {
	File    string `json:"file" jsonschema:"maxLength=4096"`
	Line    int    `json:"line" jsonschema:"minimum=1"`
	Context string `json:"context,omitempty" jsonschema:"maxLength=512"`
	Usage   string `json:"usage,omitempty"`
}

// key returns the (file, line) deduplication key for a location:
// usage_count equals |locations| after deduplicating by this key.
func (l Location) key() string {
	return l.File + ":" + strconv.Itoa(l.Line)
}

// Finding is a tagged, pre-aggregation record emitted by an analyzer
// or manifest/lockfile parser. Only the fields relevant to Kind are
// populated; this is a pragmatic sum type over the five finding kinds,
// without resorting to five separate types at the analyzer boundary,
// since analyzers emit a single homogeneous stream that the aggregator
// folds by tag.
type Finding struct {
	Kind       Kind
	Confidence Confidence
	Locations  []Location

	// package
	Name               string
	Ecosystem          string
	CurrentVersion     string
	VersionConstraint  string
	ManifestFile       string

	// api
	URL         string
	Method      string
	Provider    string
	ResolvedURL string

	// sdk
	SDKPackage   string
	ServicesUsed []string
	APIMethods   []string

	// infrastructure
	Type          string
	ConnectionRef string
	ResolvedHost  string

	// webhook
	Direction string
	TargetURL string
}

// UsageCount returns |locations| after (file, line) deduplication.
func (f Finding) UsageCount() int {
	seen := make(map[string]struct{}, len(f.Locations))
	for _, l := range f.Locations {
		seen[l.key()] = struct{}{}
	}
	return len(seen)
}

// DedupedLocations returns Locations with duplicate (file, line) pairs
// removed, preserving first-seen insertion order: locations[] is
// ordered by insertion.
func DedupedLocations(locs []Location) []Location {
	seen := make(map[string]struct{}, len(locs))
	out := make([]Location, 0, len(locs))
	for _, l := range locs {
		k := l.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}

// PackageEntry is a post-aggregation package dependency entry.
type PackageEntry struct {
	ID                string     `json:"id,omitempty"`
	Name              string     `json:"name" jsonschema:"maxLength=256"`
	Ecosystem         string     `json:"ecosystem"`
	CurrentVersion    string     `json:"current_version"`
	VersionConstraint string     `json:"version_constraint,omitempty"`
	ManifestFile      string     `json:"manifest_file,omitempty" jsonschema:"maxLength=4096"`
	Confidence        Confidence `json:"confidence"`
	UsageCount        int        `json:"usage_count"`
	Locations         []Location `json:"locations"`
}

// APIEntry is a post-aggregation outbound HTTP endpoint entry.
type APIEntry struct {
	ID          string     `json:"id,omitempty"`
	URL         string     `json:"url" jsonschema:"maxLength=2048"`
	Method      string     `json:"method,omitempty"`
	Provider    string     `json:"provider,omitempty"`
	ResolvedURL string     `json:"resolved_url,omitempty" jsonschema:"maxLength=2048"`
	Confidence  Confidence `json:"confidence"`
	UsageCount  int        `json:"usage_count"`
	Locations   []Location `json:"locations"`
}

// SDKEntry is a post-aggregation vendor SDK usage entry.
type SDKEntry struct {
	ID           string     `json:"id,omitempty"`
	Provider     string     `json:"provider"`
	SDKPackage   string     `json:"sdk_package"`
	ServicesUsed []string   `json:"services_used,omitempty"`
	APIMethods   []string   `json:"api_methods,omitempty"`
	Confidence   Confidence `json:"confidence"`
	UsageCount   int        `json:"usage_count"`
	Locations    []Location `json:"locations"`
}

// InfrastructureEntry is a post-aggregation direct infrastructure
// connection entry (database, queue, cache, object store, ...).
type InfrastructureEntry struct {
	ID            string     `json:"id,omitempty"`
	Type          string     `json:"type"`
	ConnectionRef string     `json:"connection_ref" jsonschema:"maxLength=2048"`
	ResolvedHost  string     `json:"resolved_host,omitempty"`
	Confidence    Confidence `json:"confidence"`
	UsageCount    int        `json:"usage_count"`
	Locations     []Location `json:"locations"`
}

// WebhookEntry is a post-aggregation webhook registration/callback entry.
type WebhookEntry struct {
	ID         string     `json:"id,omitempty"`
	Direction  string     `json:"direction"`
	TargetURL  string     `json:"target_url" jsonschema:"maxLength=2048"`
	Provider   string     `json:"provider,omitempty"`
	Confidence Confidence `json:"confidence"`
	UsageCount int        `json:"usage_count"`
	Locations  []Location `json:"locations"`
}

// Metadata is the manifest's scan-level summary record.
type Metadata struct {
	ScanTimestamp          string   `json:"scan_timestamp"`
	ScannerVersion         string   `json:"scanner_version"`
	Repository             string   `json:"repository,omitempty"`
	LanguagesDetected      []string `json:"languages_detected"`
	TotalDependenciesFound int      `json:"total_dependencies_found"`
	ScanDurationMS         int64    `json:"scan_duration_ms"`
}

// Manifest is the external, post-aggregation, schema-versioned
// document. It is immutable once Validate succeeds.
type Manifest struct {
	Version        string                `json:"version"`
	Metadata       Metadata              `json:"metadata"`
	Packages       []PackageEntry        `json:"packages"`
	APIs           []APIEntry            `json:"apis"`
	SDKs           []SDKEntry            `json:"sdks"`
	Infrastructure []InfrastructureEntry `json:"infrastructure"`
	Webhooks       []WebhookEntry        `json:"webhooks"`
}
