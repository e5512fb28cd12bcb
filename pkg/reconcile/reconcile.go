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

package reconcile

import (
	"path/filepath"

	"github.com/kraklabs/depscan/pkg/manifest"
)

// lockfileBasenames are the basenames treated as resolved/lockfile
// findings; everything else a manifest analyzer emits is
// manifest-declared.
var lockfileBasenames = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.lock":        true,
	"composer.lock":     true,
	"go.sum":            true,
	"poetry.lock":       true,
	"Pipfile.lock":      true,
}

// key is the reconciler's merge key: (ecosystem, name).
type key struct {
	ecosystem string
	name      string
}

// Reconcile merges findings. Non-package findings pass
// through unchanged, in their original relative order after packages.
func Reconcile(findings []manifest.Finding) []manifest.Finding {
	var manifestDeclared, lockfileDeclared, other []manifest.Finding

	for _, f := range findings {
		if f.Kind != manifest.KindPackage {
			other = append(other, f)
			continue
		}
		if lockfileBasenames[filepath.Base(f.ManifestFile)] {
			lockfileDeclared = append(lockfileDeclared, f)
		} else {
			manifestDeclared = append(manifestDeclared, f)
		}
	}

	manifestByKey := make(map[key]manifest.Finding, len(manifestDeclared))
	var manifestOrder []key
	for _, f := range manifestDeclared {
		k := key{f.Ecosystem, f.Name}
		if _, exists := manifestByKey[k]; !exists {
			manifestOrder = append(manifestOrder, k)
		}
		manifestByKey[k] = f
	}

	lockfileByKey := make(map[key]manifest.Finding, len(lockfileDeclared))
	var lockfileOrder []key
	for _, f := range lockfileDeclared {
		k := key{f.Ecosystem, f.Name}
		if _, exists := lockfileByKey[k]; !exists {
			lockfileOrder = append(lockfileOrder, k)
		}
		lockfileByKey[k] = f
	}

	merged := make([]manifest.Finding, 0, len(manifestOrder)+len(lockfileOrder))
	seen := make(map[key]bool, len(manifestOrder))

	for _, k := range manifestOrder {
		mf := manifestByKey[k]
		if lf, ok := lockfileByKey[k]; ok {
			// Rule 1: package in both sets.
			merged = append(merged, manifest.Finding{
				Kind:              manifest.KindPackage,
				Name:              mf.Name,
				Ecosystem:         mf.Ecosystem,
				CurrentVersion:    lf.CurrentVersion,
				VersionConstraint: mf.VersionConstraint,
				ManifestFile:      mf.ManifestFile,
				Confidence:        mf.Confidence,
				Locations:         mf.Locations,
			})
		} else {
			// Rule 2: manifest only.
			merged = append(merged, mf)
		}
		seen[k] = true
	}

	for _, k := range lockfileOrder {
		if seen[k] {
			continue
		}
		// Rule 3: lockfile only (captures transitive dependencies).
		merged = append(merged, lockfileByKey[k])
	}

	merged = append(merged, other...)
	return merged
}
