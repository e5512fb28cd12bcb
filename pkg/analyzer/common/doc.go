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

// Package common implements the shared pattern-matching engine used by
// every per-language analyzer. Each language package
// supplies a Catalogue of compiled regular expressions; this package
// walks the source text once, comment-aware, and turns catalogue
// matches into findings. The engine is adapted from the ingestion
// pipeline's simplified Go parser: the same carried-state,
// character-at-a-time comment/string tracking, generalised from
// function-call extraction to multi-catalogue finding extraction.
package common
