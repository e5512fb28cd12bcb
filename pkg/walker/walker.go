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
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/depscan/pkg/config"
)

// FileInfo describes a single discovered file, relative to the scan
// root plus its resolved absolute path.
type FileInfo struct {
	RelPath  string
	AbsPath  string
	Size     int64
	Language string
}

// Options configures a single Walk call.
type Options struct {
	// ScanRoot is the absolute directory to walk.
	ScanRoot string

	// Ignore applies the layered default/ignore-file/config/extra
	// pattern set.
	Ignore *config.IgnoreMatcher

	// ManifestBasenames are exact basenames recognised as manifest
	// files (e.g. "package.json", "go.mod").
	ManifestBasenames map[string]bool

	// RequirementsPattern additionally recognises requirements(-*)?.txt
	// as a manifest file.
	RequirementsPattern *regexp.Regexp

	// SourceExtensions maps a registered plugin's extensions (with
	// leading dot, e.g. ".go") to its language tag.
	SourceExtensions map[string]string

	// MaxFileSizeBytes is the per-file size cutoff; files larger are
	// counted as skipped without being read. Zero disables the check.
	MaxFileSizeBytes int64

	Logger *slog.Logger
}

// Result is the partitioned output of a walk.
type Result struct {
	ManifestFiles []FileInfo
	SourceFiles   []FileInfo
	SkipReasons   map[string]int
}

// DefaultRequirementsPattern matches requirements.txt, requirements-dev.txt, etc.
var DefaultRequirementsPattern = regexp.MustCompile(`^requirements(-[\w.-]+)?\.txt$`)

// Walk enumerates regular files under opts.ScanRoot and partitions
// them into manifest files and source files. Always-on exclusions
// (dotfiles, node_modules, .git, dist, build, .next, coverage) are
// expected to already be present in opts.Ignore via
// config.NewIgnoreMatcher. Symlinks are never followed.
func Walk(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reqPattern := opts.RequirementsPattern
	if reqPattern == nil {
		reqPattern = DefaultRequirementsPattern
	}

	result := &Result{SkipReasons: make(map[string]int)}

	err := filepath.WalkDir(opts.ScanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == opts.ScanRoot {
				return err
			}
			logger.Warn("scan.walk.error", "path", path, "err", err)
			return nil
		}

		relPath, relErr := filepath.Rel(opts.ScanRoot, path)
		if relErr != nil {
			return nil
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if opts.Ignore != nil && opts.Ignore.Match(relPath, true) {
				result.SkipReasons["excluded_dir"]++
				return filepath.SkipDir
			}
			return nil
		}

		// Never follow symlinks.
		if d.Type()&fs.ModeSymlink != 0 {
			result.SkipReasons["symlink"]++
			return nil
		}

		if opts.Ignore != nil && opts.Ignore.Match(relPath, false) {
			result.SkipReasons["excluded"]++
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			result.SkipReasons["unreadable"]++
			return nil
		}

		if opts.MaxFileSizeBytes > 0 && info.Size() > opts.MaxFileSizeBytes {
			result.SkipReasons["too_large"]++
			return nil
		}

		base := filepath.Base(relPath)
		fi := FileInfo{
			RelPath: relPath,
			AbsPath: path,
			Size:    info.Size(),
		}

		if opts.ManifestBasenames[base] || reqPattern.MatchString(base) {
			result.ManifestFiles = append(result.ManifestFiles, fi)
			return nil
		}

		ext := strings.ToLower(filepath.Ext(base))
		if lang, ok := opts.SourceExtensions[ext]; ok {
			fi.Language = lang
			result.SourceFiles = append(result.SourceFiles, fi)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", opts.ScanRoot, err)
	}
	return result, nil
}
