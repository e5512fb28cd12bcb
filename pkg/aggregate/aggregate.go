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

package aggregate

import "github.com/kraklabs/depscan/pkg/manifest"

// confidenceRank orders confidence levels so merges can keep the
// strongest evidence seen for a deduplicated entry.
func confidenceRank(c manifest.Confidence) int {
	switch c {
	case manifest.ConfidenceHigh:
		return 3
	case manifest.ConfidenceMedium:
		return 2
	case manifest.ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// stronger returns whichever confidence ranks higher, preferring a
// (the existing merged value) on ties so earlier evidence wins.
func stronger(a, b manifest.Confidence) manifest.Confidence {
	if confidenceRank(b) > confidenceRank(a) {
		return b
	}
	return a
}

// meetsMinConfidence reports whether c should survive a min_confidence
// filter. An empty min admits everything.
func meetsMinConfidence(c, min manifest.Confidence) bool {
	return min == "" || confidenceRank(c) >= confidenceRank(min)
}

// filterGroups drops merged groups whose winning confidence falls
// below min, applied after grouping so the threshold sees each
// deduplicated entry's strongest evidence rather than per-finding noise.
func filterGroups(groups []*merged, min manifest.Confidence) []*merged {
	if min == "" {
		return groups
	}
	out := make([]*merged, 0, len(groups))
	for _, g := range groups {
		if meetsMinConfidence(g.first.Confidence, min) {
			out = append(out, g)
		}
	}
	return out
}

// unionStrings appends the elements of b to a that are not already
// present, preserving first-seen order.
func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	out := a
	for _, s := range b {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// merged accumulates every finding sharing a canonical key.
type merged struct {
	first     manifest.Finding
	locations []manifest.Location
}

// groupByKey folds findings of a single kind by their canonical key,
// preserving first-seen group order.
func groupByKey(findings []manifest.Finding) []*merged {
	index := make(map[string]*merged, len(findings))
	var order []*merged

	for _, f := range findings {
		key := manifest.CanonicalKey(f)
		m, ok := index[key]
		if !ok {
			m = &merged{first: f}
			index[key] = m
			order = append(order, m)
		} else {
			m.first = combine(m.first, f)
		}
		m.locations = append(m.locations, f.Locations...)
	}
	return order
}

// combine folds finding b into the winning record a, keeping the
// stronger confidence and filling in fields the winner lacks.
func combine(a, b manifest.Finding) manifest.Finding {
	winner, loser := a, b
	if confidenceRank(b.Confidence) > confidenceRank(a.Confidence) {
		winner, loser = b, a
	}
	winner.Confidence = stronger(a.Confidence, b.Confidence)

	if winner.CurrentVersion == "" || winner.CurrentVersion == "unknown" {
		if loser.CurrentVersion != "" {
			winner.CurrentVersion = loser.CurrentVersion
		}
	}
	if winner.VersionConstraint == "" {
		winner.VersionConstraint = loser.VersionConstraint
	}
	if winner.ManifestFile == "" {
		winner.ManifestFile = loser.ManifestFile
	}
	if winner.ResolvedURL == "" {
		winner.ResolvedURL = loser.ResolvedURL
	}
	if winner.ResolvedHost == "" {
		winner.ResolvedHost = loser.ResolvedHost
	}
	winner.ServicesUsed = unionStrings(winner.ServicesUsed, loser.ServicesUsed)
	winner.APIMethods = unionStrings(winner.APIMethods, loser.APIMethods)
	return winner
}

// Aggregate folds the raw finding stream produced by the plugin
// registry and ecosystem analyzers into a validated Manifest. meta is
// filled in by the caller (scan timestamp, scanner version, repository,
// detected languages, duration); Aggregate computes
// total_dependencies_found itself. minConfidence, when non-empty, drops
// any deduplicated entry whose strongest surviving confidence falls
// below it before the manifest is built and validated.
func Aggregate(findings []manifest.Finding, meta manifest.Metadata, minConfidence manifest.Confidence) (*manifest.Manifest, *manifest.ValidationError, error) {
	var packages []manifest.Finding
	var apis []manifest.Finding
	var sdks []manifest.Finding
	var infra []manifest.Finding
	var webhooks []manifest.Finding

	for _, f := range findings {
		switch f.Kind {
		case manifest.KindPackage:
			packages = append(packages, f)
		case manifest.KindAPI:
			apis = append(apis, f)
		case manifest.KindSDK:
			sdks = append(sdks, f)
		case manifest.KindInfrastructure:
			infra = append(infra, f)
		case manifest.KindWebhook:
			webhooks = append(webhooks, f)
		}
	}

	m := &manifest.Manifest{
		Version:  manifest.SchemaVersion,
		Metadata: meta,
	}

	for _, g := range filterGroups(groupByKey(packages), minConfidence) {
		locs := manifest.DedupedLocations(g.locations)
		f := g.first
		m.Packages = append(m.Packages, manifest.PackageEntry{
			ID:                manifest.PackageID(f.Ecosystem, f.Name, f.CurrentVersion),
			Name:              f.Name,
			Ecosystem:         f.Ecosystem,
			CurrentVersion:    f.CurrentVersion,
			VersionConstraint: f.VersionConstraint,
			ManifestFile:      f.ManifestFile,
			Confidence:        f.Confidence,
			UsageCount:        manifest.Finding{Locations: locs}.UsageCount(),
			Locations:         locs,
		})
	}

	for _, g := range filterGroups(groupByKey(apis), minConfidence) {
		locs := manifest.DedupedLocations(g.locations)
		f := g.first
		m.APIs = append(m.APIs, manifest.APIEntry{
			ID:          manifest.APIID(f.Method, f.URL),
			URL:         f.URL,
			Method:      f.Method,
			Provider:    f.Provider,
			ResolvedURL: f.ResolvedURL,
			Confidence:  f.Confidence,
			UsageCount:  manifest.Finding{Locations: locs}.UsageCount(),
			Locations:   locs,
		})
	}

	for _, g := range filterGroups(groupByKey(sdks), minConfidence) {
		locs := manifest.DedupedLocations(g.locations)
		f := g.first
		m.SDKs = append(m.SDKs, manifest.SDKEntry{
			ID:           manifest.SDKID(f.Provider, f.SDKPackage),
			Provider:     f.Provider,
			SDKPackage:   f.SDKPackage,
			ServicesUsed: f.ServicesUsed,
			APIMethods:   f.APIMethods,
			Confidence:   f.Confidence,
			UsageCount:   manifest.Finding{Locations: locs}.UsageCount(),
			Locations:    locs,
		})
	}

	for _, g := range filterGroups(groupByKey(infra), minConfidence) {
		locs := manifest.DedupedLocations(g.locations)
		f := g.first
		m.Infrastructure = append(m.Infrastructure, manifest.InfrastructureEntry{
			ID:            manifest.InfrastructureID(f.Type, f.ConnectionRef),
			Type:          f.Type,
			ConnectionRef: f.ConnectionRef,
			ResolvedHost:  f.ResolvedHost,
			Confidence:    f.Confidence,
			UsageCount:    manifest.Finding{Locations: locs}.UsageCount(),
			Locations:     locs,
		})
	}

	for _, g := range filterGroups(groupByKey(webhooks), minConfidence) {
		locs := manifest.DedupedLocations(g.locations)
		f := g.first
		m.Webhooks = append(m.Webhooks, manifest.WebhookEntry{
			ID:         manifest.WebhookID(f.Direction, f.TargetURL),
			Direction:  f.Direction,
			TargetURL:  f.TargetURL,
			Provider:   f.Provider,
			Confidence: f.Confidence,
			UsageCount: manifest.Finding{Locations: locs}.UsageCount(),
			Locations:  locs,
		})
	}

	m.Metadata.TotalDependenciesFound = len(m.Packages) + len(m.APIs) + len(m.SDKs) + len(m.Infrastructure) + len(m.Webhooks)

	if verr := manifest.Validate(m); verr != nil {
		return m, verr, nil
	}
	return m, nil, nil
}
