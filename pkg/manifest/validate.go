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
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Issue is a single schema-validation failure, stable enough for
// machine consumption by CI gates.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Keyword string `json:"keyword"`
}

// ValidationError is returned when a manifest document fails
// validation. Message is truncated to the first five issues with a
// "…and N more" suffix; Issues carries the full list.
type ValidationError struct {
	Message string
	Issues  []Issue
}

func (e *ValidationError) Error() string { return e.Message }

var versionPattern = regexp.MustCompile(`^\d+\.\d+$`)

var standardMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

func isConfidence(c Confidence) bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Validate checks m against every bound and invariant this package
// enforces, returning a *ValidationError (nil if valid). It also runs the compiled
// draft 2020-12 schema as a secondary check; a schema-level rejection
// is appended as one more issue rather than replacing this list.
func Validate(m *Manifest) *ValidationError {
	var issues []Issue
	add := func(path, message, keyword string) {
		issues = append(issues, Issue{Path: path, Message: message, Keyword: keyword})
	}

	if !versionPattern.MatchString(m.Version) {
		add("$.version", fmt.Sprintf("version %q does not match ^\\d+\\.\\d+$", m.Version), "pattern")
	}
	if want := len(m.Packages) + len(m.APIs) + len(m.SDKs) + len(m.Infrastructure) + len(m.Webhooks); m.Metadata.TotalDependenciesFound != want {
		add("$.metadata.total_dependencies_found", fmt.Sprintf("expected %d, got %d", want, m.Metadata.TotalDependenciesFound), "const")
	}
	if _, err := time.Parse(time.RFC3339, m.Metadata.ScanTimestamp); err != nil {
		add("$.metadata.scan_timestamp", "scan_timestamp is not a valid ISO-8601 date-time", "format")
	}

	checkList := func(listPath string, n int) {
		if n > MaxListLength {
			add(listPath, fmt.Sprintf("exceeds maximum list length %d", MaxListLength), "maxItems")
		}
	}
	checkList("$.packages", len(m.Packages))
	checkList("$.apis", len(m.APIs))
	checkList("$.sdks", len(m.SDKs))
	checkList("$.infrastructure", len(m.Infrastructure))
	checkList("$.webhooks", len(m.Webhooks))

	checkLocations := func(path string, locs []Location, usageCount int) {
		if len(locs) > MaxLocations {
			add(path+".locations", fmt.Sprintf("exceeds maximum locations %d", MaxLocations), "maxItems")
		}
		seen := make(map[string]struct{}, len(locs))
		for i, l := range locs {
			if l.Line < 1 {
				add(fmt.Sprintf("%s.locations[%d].line", path, i), "line must be >= 1", "minimum")
			}
			if len(l.File) > MaxFileLength {
				add(fmt.Sprintf("%s.locations[%d].file", path, i), "file exceeds maximum length", "maxLength")
			}
			if len(l.Context) > MaxContextLength {
				add(fmt.Sprintf("%s.locations[%d].context", path, i), "context exceeds maximum length", "maxLength")
			}
			seen[l.key()] = struct{}{}
		}
		if usageCount != len(seen) {
			add(path+".usage_count", fmt.Sprintf("usage_count %d does not match deduplicated location count %d", usageCount, len(seen)), "const")
		}
	}

	for i, p := range m.Packages {
		path := fmt.Sprintf("$.packages[%d]", i)
		if len(p.Name) > MaxNameLength {
			add(path+".name", "name exceeds maximum length", "maxLength")
		}
		if len(p.ManifestFile) > MaxFileLength {
			add(path+".manifest_file", "manifest_file exceeds maximum length", "maxLength")
		}
		if !isConfidence(p.Confidence) {
			add(path+".confidence", "confidence must be one of high, medium, low", "enum")
		}
		if len(p.Locations) == 0 && p.ManifestFile == "" {
			add(path+".locations", "locations must be non-empty unless the entry is manifest-only", "minItems")
		}
		checkLocations(path, p.Locations, p.UsageCount)
	}

	for i, a := range m.APIs {
		path := fmt.Sprintf("$.apis[%d]", i)
		if len(a.URL) > MaxURLLength {
			add(path+".url", "url exceeds maximum length", "maxLength")
		}
		if !hasAllowedURLPrefix(a.URL, false) {
			add(path+".url", "url must begin with http://, https://, or ${", "pattern")
		}
		if a.Method != "" && !standardMethods[strings.ToUpper(a.Method)] {
			add(path+".method", "method must be a standard HTTP verb", "enum")
		}
		if !isConfidence(a.Confidence) {
			add(path+".confidence", "confidence must be one of high, medium, low", "enum")
		}
		if len(a.Locations) == 0 {
			add(path+".locations", "locations must be non-empty", "minItems")
		}
		checkLocations(path, a.Locations, a.UsageCount)
	}

	for i, s := range m.SDKs {
		path := fmt.Sprintf("$.sdks[%d]", i)
		if !isConfidence(s.Confidence) {
			add(path+".confidence", "confidence must be one of high, medium, low", "enum")
		}
		if len(s.Locations) == 0 {
			add(path+".locations", "locations must be non-empty", "minItems")
		}
		checkLocations(path, s.Locations, s.UsageCount)
	}

	for i, inf := range m.Infrastructure {
		path := fmt.Sprintf("$.infrastructure[%d]", i)
		if len(inf.ConnectionRef) > MaxURLLength {
			add(path+".connection_ref", "connection_ref exceeds maximum length", "maxLength")
		}
		if !isConfidence(inf.Confidence) {
			add(path+".confidence", "confidence must be one of high, medium, low", "enum")
		}
		if len(inf.Locations) == 0 {
			add(path+".locations", "locations must be non-empty", "minItems")
		}
		checkLocations(path, inf.Locations, inf.UsageCount)
	}

	for i, w := range m.Webhooks {
		path := fmt.Sprintf("$.webhooks[%d]", i)
		if len(w.TargetURL) > MaxURLLength {
			add(path+".target_url", "target_url exceeds maximum length", "maxLength")
		}
		if !hasAllowedURLPrefix(w.TargetURL, true) {
			add(path+".target_url", "target_url must begin with http://, https://, ${, or /", "pattern")
		}
		if w.Direction != DirectionOutboundRegistration && w.Direction != DirectionInboundCallback {
			add(path+".direction", "direction must be outbound_registration or inbound_callback", "enum")
		}
		if !isConfidence(w.Confidence) {
			add(path+".confidence", "confidence must be one of high, medium, low", "enum")
		}
		if len(w.Locations) == 0 {
			add(path+".locations", "locations must be non-empty", "minItems")
		}
		checkLocations(path, w.Locations, w.UsageCount)
	}

	if len(issues) == 0 {
		if raw, err := toGenericJSON(m); err == nil {
			if err := validateAgainstCompiledSchema(raw); err != nil {
				add("$", err.Error(), "schema")
			}
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Message: truncatedMessage(issues), Issues: issues}
}

// hasAllowedURLPrefix checks the URL scheme rule: API urls must begin
// with http://, https://, or ${; webhook target_urls also permit a
// leading /.
func hasAllowedURLPrefix(url string, allowSlash bool) bool {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "${") {
		return true
	}
	return allowSlash && strings.HasPrefix(url, "/")
}

func truncatedMessage(issues []Issue) string {
	const shown = 5
	if len(issues) <= shown {
		parts := make([]string, len(issues))
		for i, iss := range issues {
			parts[i] = fmt.Sprintf("%s: %s", iss.Path, iss.Message)
		}
		return strings.Join(parts, "; ")
	}
	parts := make([]string, shown)
	for i := 0; i < shown; i++ {
		parts[i] = fmt.Sprintf("%s: %s", issues[i].Path, issues[i].Message)
	}
	return fmt.Sprintf("%s …and %d more", strings.Join(parts, "; "), len(issues)-shown)
}

func toGenericJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Parse decodes and validates a manifest document.
func Parse(data []byte) (*Manifest, *ValidationError, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, nil, fmt.Errorf("decode manifest: %w", err)
	}
	if ve := Validate(&m); ve != nil {
		return nil, ve, nil
	}
	return &m, nil, nil
}

// ParseFromString enforces a byte-length cap before parsing, to guard
// against decompression/parse amplification, then delegates to Parse.
// maxBytes defaults to DefaultMaxParseBytes when <= 0.
func ParseFromString(text string, maxBytes int) (*Manifest, *ValidationError, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxParseBytes
	}
	if len(text) > maxBytes {
		return nil, nil, fmt.Errorf("input of %d bytes exceeds the %d byte parse cap", len(text), maxBytes)
	}
	return Parse([]byte(text))
}
