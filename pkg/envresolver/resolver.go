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

package envresolver

import (
	"os"
	"regexp"
	"strings"

	"github.com/subosito/gotenv"

	"github.com/kraklabs/depscan/pkg/manifest"
)

// Resolver holds the merged, read-only environment map. Once built it
// is shared by reference across analyzer workers.
type Resolver struct {
	env map[string]string
}

// BuildOptions controls which of the four sources
// contribute to the merge. UseProcessEnv must be explicitly opted
// into; the other three are always consulted when present.
type BuildOptions struct {
	// UseProcessEnv opts into source 2 (the process environment).
	// Off by default, since reading the ambient process environment
	// into emitted findings is a deliberate, not implicit, choice.
	UseProcessEnv bool

	// DotenvPath is the path to a dotenv file (source 3), typically
	// "<scan_root>/.env". Empty disables this source.
	DotenvPath string

	// ConfigEnv is the highest-priority source (4): explicit env:
	// entries from project config.
	ConfigEnv map[string]string
}

// Build merges the four sources in last-wins order: built-in table,
// process environment (opt-in), .env file, config env. This order is
// a contract, not an implementation detail.
func Build(opts BuildOptions) (*Resolver, error) {
	merged := make(map[string]string, len(builtinProviders))
	for k, v := range builtinProviders {
		merged[k] = v
	}

	if opts.UseProcessEnv {
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				merged[kv[:i]] = kv[i+1:]
			}
		}
	}

	if opts.DotenvPath != "" {
		if _, err := os.Stat(opts.DotenvPath); err == nil {
			dotenv, err := gotenv.Read(opts.DotenvPath)
			if err != nil {
				return nil, err
			}
			for k, v := range dotenv {
				merged[k] = v
			}
		}
	}

	for k, v := range opts.ConfigEnv {
		merged[k] = v
	}

	return &Resolver{env: merged}, nil
}

// Lookup returns the resolved value for name and whether it is defined.
func (r *Resolver) Lookup(name string) (string, bool) {
	v, ok := r.env[name]
	return v, ok
}

var templateSlot = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ResolveURL implements resolveUrl(template, env):
// substitutes every ${NAME} slot with r.env[NAME] when defined,
// leaving the literal ${NAME} in place otherwise, then always passes
// the result through Redact before returning it.
func (r *Resolver) ResolveURL(template string) (resolved string, confidence manifest.Confidence) {
	slots := templateSlot.FindAllStringSubmatch(template, -1)
	if len(slots) == 0 {
		return Redact(template), manifest.ConfidenceHigh
	}

	substituted := 0
	result := templateSlot.ReplaceAllStringFunc(template, func(match string) string {
		name := templateSlot.FindStringSubmatch(match)[1]
		if v, ok := r.env[name]; ok {
			substituted++
			return v
		}
		return match
	})

	switch {
	case substituted == len(slots):
		return Redact(result), manifest.ConfidenceHigh
	case substituted > 0:
		return Redact(result), manifest.ConfidenceMedium
	default:
		return "", manifest.ConfidenceLow
	}
}
