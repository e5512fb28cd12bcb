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

import "strings"

// Stable identifier formats, one builder per finding kind. Each id is
// built from the same fields as its kind's canonical deduplication key
// (a package id also carries the version when it is known) behind a
// kind prefix, and is an opaque contract for any downstream consumer that diffs manifests
// across scans — the format must not change independently of a schema
// version bump.

// PackageID builds a package's stable id: pkg:<ecosystem>/<name>[@<version>].
func PackageID(ecosystem, name, version string) string {
	id := "pkg:" + ecosystem + "/" + name
	if version != "" && version != "unknown" {
		id += "@" + version
	}
	return id
}

// APIID builds an API endpoint's stable id: api:<METHOD>:<url>.
func APIID(method, url string) string {
	m := method
	if m == "" {
		m = "ANY"
	}
	return "api:" + strings.ToUpper(m) + ":" + url
}

// SDKID builds an SDK usage's stable id: sdk:<provider>/<sdk_package>.
func SDKID(provider, sdkPackage string) string {
	return "sdk:" + provider + "/" + sdkPackage
}

// InfrastructureID builds an infrastructure connection's stable id:
// infra:<type>/<connection_ref>.
func InfrastructureID(typ, connectionRef string) string {
	return "infra:" + typ + "/" + connectionRef
}

// WebhookID builds a webhook's stable id: webhook:<direction>/<target_url>.
func WebhookID(direction, targetURL string) string {
	return "webhook:" + direction + "/" + targetURL
}

// CanonicalKey returns the canonical deduplication key for a finding:
// its kind's identifying fields joined with ":", without a package's
// version. Findings of the same kind that
// share a canonical key describe the same dependency and are merged
// during aggregation.
func CanonicalKey(f Finding) string {
	switch f.Kind {
	case KindPackage:
		return f.Ecosystem + ":" + f.Name
	case KindAPI:
		m := f.Method
		if m == "" {
			m = "ANY"
		}
		return strings.ToUpper(m) + ":" + f.URL
	case KindSDK:
		return f.Provider + ":" + f.SDKPackage
	case KindInfrastructure:
		return f.Type + ":" + f.ConnectionRef
	case KindWebhook:
		return f.Direction + ":" + f.TargetURL
	default:
		return ""
	}
}
