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

// Package plugin defines the language analyzer protocol and
// a registry that the scheduler uses to dispatch source files and
// manifest files to the right implementation. The shape mirrors the
// ingestion pipeline's CodeParser interface: one small interface per
// concern, satisfied by a family of concrete language implementations,
// looked up by a registry rather than a type switch.
package plugin
