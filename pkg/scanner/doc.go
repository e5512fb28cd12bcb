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

// Package scanner drives a full dependency-manifest scan end to end:
// walk the scan root, dispatch manifest analysis and
// source-file analysis across a bounded worker pool, reconcile and
// aggregate the resulting findings, and hand back a validated Manifest
// alongside per-file errors and wall-clock timing. The scheduler moves
// through a trivial state machine — idle, walking, dispatched,
// reducing, validated, done — with a terminal failed state reserved
// for unrecoverable errors.
package scanner
