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

package plugin

import (
	"fmt"

	"github.com/kraklabs/depscan/pkg/envresolver"
	"github.com/kraklabs/depscan/pkg/manifest"
)

// SourceContext is the input to a single Analyze call: one source file's
// path, text, the scan root it lives under, and the resolved environment
// available for ${VAR} substitution.
type SourceContext struct {
	FilePath    string
	SourceText  string
	ScanRoot    string
	ResolvedEnv *envresolver.Resolver
}

// Plugin is the capability contract a language implementation satisfies.
// Plugins must be pure functions of their inputs: no network access, no
// reliance on process-global state beyond ResolvedEnv.
type Plugin interface {
	// Language returns the plugin's language tag, e.g. "go", "python".
	Language() string

	// Extensions lists the source file extensions (with leading dot)
	// this plugin's Analyze method accepts.
	Extensions() []string

	// Analyze pattern-matches a single source file and emits api, sdk,
	// infrastructure, and webhook findings.
	Analyze(ctx SourceContext) ([]manifest.Finding, error)
}

// ManifestAnalyzer is the optional second capability: a
// plugin that also parses ecosystem manifest/lockfiles into package
// findings.
type ManifestAnalyzer interface {
	// ManifestBasenames lists the exact basenames this analyzer claims,
	// e.g. "package.json", "package-lock.json".
	ManifestBasenames() []string

	// AnalyzeManifests parses the given manifest/lockfile paths
	// (absolute) into package findings. Malformed or unreadable files
	// are a non-fatal condition: implementations log and return what
	// they could parse, never an error that aborts the scan.
	AnalyzeManifests(paths []string, scanRoot string) ([]manifest.Finding, error)
}

// Registry dispatches source files by extension and manifest files by
// basename to the plugin that claims them.
type Registry struct {
	byExtension map[string]Plugin
	byBasename  map[string]ManifestAnalyzer
	plugins     []Plugin
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExtension: make(map[string]Plugin),
		byBasename:  make(map[string]ManifestAnalyzer),
	}
}

// Register adds p to the registry, indexing it by every extension it
// declares, and by every manifest basename if it also implements
// ManifestAnalyzer. A later registration for the same extension or
// basename overrides an earlier one.
func (r *Registry) Register(p Plugin) error {
	if p.Language() == "" {
		return fmt.Errorf("plugin: language tag must not be empty")
	}
	for _, ext := range p.Extensions() {
		r.byExtension[ext] = p
	}
	if ma, ok := p.(ManifestAnalyzer); ok {
		for _, base := range ma.ManifestBasenames() {
			r.byBasename[base] = ma
		}
	}
	r.plugins = append(r.plugins, p)
	return nil
}

// RegisterManifestAnalyzer adds a manifest/lockfile parser that has no
// corresponding source-file analyzer (e.g. Cargo, Composer), indexing
// it by every basename it claims.
func (r *Registry) RegisterManifestAnalyzer(ma ManifestAnalyzer) {
	for _, base := range ma.ManifestBasenames() {
		r.byBasename[base] = ma
	}
}

// SourceExtensions returns an extension-to-language map suitable for
// pkg/walker.Options.SourceExtensions.
func (r *Registry) SourceExtensions() map[string]string {
	out := make(map[string]string, len(r.byExtension))
	for ext, p := range r.byExtension {
		out[ext] = p.Language()
	}
	return out
}

// ManifestBasenames returns the set of basenames claimed by any
// registered ManifestAnalyzer, suitable for
// pkg/walker.Options.ManifestBasenames.
func (r *Registry) ManifestBasenames() map[string]bool {
	out := make(map[string]bool, len(r.byBasename))
	for base := range r.byBasename {
		out[base] = true
	}
	return out
}

// ForExtension returns the plugin registered for a source extension
// (with leading dot), if any.
func (r *Registry) ForExtension(ext string) (Plugin, bool) {
	p, ok := r.byExtension[ext]
	return p, ok
}

// ForBasename returns the manifest analyzer registered for a basename,
// if any.
func (r *Registry) ForBasename(base string) (ManifestAnalyzer, bool) {
	ma, ok := r.byBasename[base]
	return ma, ok
}

// Plugins returns every registered plugin, in registration order.
func (r *Registry) Plugins() []Plugin {
	return r.plugins
}
