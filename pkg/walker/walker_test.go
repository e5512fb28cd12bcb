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

package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/depscan/pkg/config"
)

func writeFile(t *testing.T, root, rel, contents string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
}

func TestWalk_PartitionsManifestAndSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{}`)
	writeFile(t, root, "requirements-dev.txt", "pytest\n")
	writeFile(t, root, "src/main.go", "package main\n")
	writeFile(t, root, "node_modules/lib/index.js", "module.exports = {}\n")

	result, err := Walk(Options{
		ScanRoot:          root,
		Ignore:            config.NewIgnoreMatcher(),
		ManifestBasenames: map[string]bool{"package.json": true},
		SourceExtensions:  map[string]string{".go": "go", ".js": "javascript"},
	})
	require.NoError(t, err)

	var manifestRel []string
	for _, f := range result.ManifestFiles {
		manifestRel = append(manifestRel, f.RelPath)
	}
	require.ElementsMatch(t, []string{"package.json", "requirements-dev.txt"}, manifestRel)

	var sourceRel []string
	for _, f := range result.SourceFiles {
		sourceRel = append(sourceRel, f.RelPath)
	}
	require.ElementsMatch(t, []string{"src/main.go"}, sourceRel)
	require.Equal(t, 1, result.SkipReasons["excluded_dir"])
}

func TestWalk_SkipsFilesOverMaxSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.go", string(make([]byte, 4096)))

	result, err := Walk(Options{
		ScanRoot:         root,
		Ignore:           config.NewIgnoreMatcher(),
		SourceExtensions: map[string]string{".go": "go"},
		MaxFileSizeBytes: 1024,
	})
	require.NoError(t, err)
	require.Empty(t, result.SourceFiles)
	require.Equal(t, 1, result.SkipReasons["too_large"])
}

func TestWalk_DoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real/main.go", "package main\n")
	link := filepath.Join(root, "link.go")
	if err := os.Symlink(filepath.Join(root, "real", "main.go"), link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	result, err := Walk(Options{
		ScanRoot:         root,
		Ignore:           config.NewIgnoreMatcher(),
		SourceExtensions: map[string]string{".go": "go"},
	})
	require.NoError(t, err)

	var rel []string
	for _, f := range result.SourceFiles {
		rel = append(rel, f.RelPath)
	}
	require.ElementsMatch(t, []string{"real/main.go"}, rel)
	require.Equal(t, 1, result.SkipReasons["symlink"])
}

func TestWalk_RespectsDotfileDefaultExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "SECRET=1\n")
	writeFile(t, root, "main.go", "package main\n")

	result, err := Walk(Options{
		ScanRoot:         root,
		Ignore:           config.NewIgnoreMatcher(),
		SourceExtensions: map[string]string{".go": "go"},
	})
	require.NoError(t, err)
	require.Len(t, result.SourceFiles, 1)
	require.Equal(t, "main.go", result.SourceFiles[0].RelPath)
}
