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

// Package manifest defines the Dependency Manifest document: the
// schema-versioned, validated inventory of external surface area a
// scan produces.
//
// A Manifest is assembled by pkg/aggregate from a stream of Findings
// and is immutable once Validate succeeds. The JSON Schema describing
// the document shape is generated once from these Go types (see
// schema.go) rather than hand-maintained, so the two can never drift.
//
// Every entry's stable id (package/api/sdk/infrastructure/webhook) is
// an opaque public contract consumed by downstream diffing tools that
// are not part of this repository; the formats are fixed in id.go and
// must not change independently of a schema version bump.
package manifest
