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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIgnoreMatcher_DefaultsExcludeNodeModules(t *testing.T) {
	m := NewIgnoreMatcher()
	require.True(t, m.Match("node_modules/left-pad/index.js", false))
	require.True(t, m.Match(".git/HEAD", false))
	require.False(t, m.Match("src/main.go", false))
}

func TestIgnoreMatcher_ConfigPatternsExcludeTests(t *testing.T) {
	m := NewIgnoreMatcher()
	m.AddPatterns([]string{"tests/**"})
	require.True(t, m.Match("tests/unit/test_foo.py", false))
	require.False(t, m.Match("src/foo.py", false))
}

func TestIgnoreMatcher_NegationReincludesPath(t *testing.T) {
	m := NewIgnoreMatcher()
	m.AddPatterns([]string{"*.log", "!keep.log"})
	require.True(t, m.Match("debug.log", false))
	require.False(t, m.Match("keep.log", false))
}

func TestIgnoreMatcher_AnchoredPatternMatchesOnlyFromRoot(t *testing.T) {
	m := NewIgnoreMatcher()
	m.AddPatterns([]string{"/build"})
	require.True(t, m.Match("build", true))
	require.False(t, m.Match("src/build", true))
}
