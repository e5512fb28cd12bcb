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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/depscan/pkg/manifest"
)

// DefaultConfigName is the basename of the project-local config file.
const DefaultConfigName = ".depscan.yaml"

// DefaultIgnoreName is the basename of the sibling gitignore-syntax
// ignore file that augments Config.Ignore.
const DefaultIgnoreName = ".depscanignore"

// DefaultMaxFileSizeMB is the default per-file size cutoff applied by
// the walker.
const DefaultMaxFileSizeMB = 1

// SDKMapping describes a custom SDK detection rule contributed via
// config, letting callers teach the scanner about in-house or
// less-common vendor clients without a code change.
type SDKMapping struct {
	Package  string   `yaml:"package"`
	Provider string   `yaml:"provider"`
	Patterns []string `yaml:"patterns"`
}

// Config is the decoded form of the project-local YAML config file.
// All fields are optional; zero values fall back to scanner defaults.
type Config struct {
	Version       string                `yaml:"version"`
	Output        string                `yaml:"output"`
	OutFile       string                `yaml:"outFile"`
	Languages     []string              `yaml:"languages"`
	Roots         []string              `yaml:"roots"`
	Ignore        []string              `yaml:"ignore"`
	Env           map[string]string     `yaml:"env"`
	SDKs          map[string]SDKMapping `yaml:"sdks"`
	MinConfidence manifest.Confidence   `yaml:"min_confidence"`
	MaxFileSizeMB float64               `yaml:"max_file_size_mb"`
}

// recognisedOutputs mirrors `output ∈ {json, yaml, table}`.
var recognisedOutputs = map[string]bool{"json": true, "yaml": true, "table": true, "": true}

// Load reads and decodes the config file at scanRoot/configName. A
// missing file is not an error: Load returns a zero-value Config with
// defaults applied, matching "all optional" contract.
// configName defaults to DefaultConfigName when empty.
func Load(scanRoot, configName string) (*Config, error) {
	if configName == "" {
		configName = DefaultConfigName
	}
	path := filepath.Join(scanRoot, configName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxFileSizeMB <= 0 {
		c.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	if c.Version == "" {
		c.Version = manifest.SchemaVersion
	}
}

func (c *Config) validate() error {
	if !recognisedOutputs[c.Output] {
		return fmt.Errorf("config: unrecognised output %q (want json, yaml, or table)", c.Output)
	}
	switch c.MinConfidence {
	case "", manifest.ConfidenceHigh, manifest.ConfidenceMedium, manifest.ConfidenceLow:
	default:
		return fmt.Errorf("config: unrecognised min_confidence %q", c.MinConfidence)
	}
	if c.MaxFileSizeMB < 0 {
		return fmt.Errorf("config: max_file_size_mb must be positive, got %v", c.MaxFileSizeMB)
	}
	return nil
}

// ResolveOutputPath enforces path-safety rule: any
// output-path option must resolve to within the caller's working
// directory. An escape attempt is a fatal configuration error reported
// before scanning begins.
func ResolveOutputPath(workingDir, outFile string) (string, error) {
	if outFile == "" {
		return "", nil
	}
	abs := outFile
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(workingDir, outFile)
	}
	abs = filepath.Clean(abs)

	wd, err := filepath.Abs(workingDir)
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	wd = filepath.Clean(wd)

	rel, err := filepath.Rel(wd, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output path %q escapes the working directory", outFile)
	}
	return abs, nil
}
