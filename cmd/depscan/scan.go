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

package main

import (
	stderrors "errors"

	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/depscan/internal/errors"
	"github.com/kraklabs/depscan/internal/output"
	"github.com/kraklabs/depscan/internal/ui"
	"github.com/kraklabs/depscan/pkg/analyzer/golang"
	"github.com/kraklabs/depscan/pkg/analyzer/java"
	"github.com/kraklabs/depscan/pkg/analyzer/javascript"
	"github.com/kraklabs/depscan/pkg/analyzer/python"
	"github.com/kraklabs/depscan/pkg/config"
	"github.com/kraklabs/depscan/pkg/ecosystem/cargo"
	"github.com/kraklabs/depscan/pkg/ecosystem/composer"
	"github.com/kraklabs/depscan/pkg/ecosystem/gomod"
	"github.com/kraklabs/depscan/pkg/ecosystem/npm"
	"github.com/kraklabs/depscan/pkg/ecosystem/pypi"
	"github.com/kraklabs/depscan/pkg/envresolver"
	"github.com/kraklabs/depscan/pkg/manifest"
	"github.com/kraklabs/depscan/pkg/plugin"
	"github.com/kraklabs/depscan/pkg/scanner"
)

// runScan executes the 'scan' CLI command: walk a repository, dispatch
// every registered language and ecosystem plugin over it, and emit the
// resulting Dependency Manifest.
//
// Flags:
//   - --output: json|yaml|table (default: config's value, else json)
//   - --out: write the manifest to this file instead of stdout
//   - --min-confidence: high|medium|low, drops weaker entries from the
//     emitted manifest (default: config's value, else unfiltered)
//   - --config: path to the project config file (default: .depscan.yaml)
//   - --workers: override the scheduler's worker count
//   - --use-process-env: opt into resolving ${VAR} templates against the
//     real process environment (off by default)
//   - --json, --quiet, --no-color: global output flags
func runScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	outputFormat := fs.String("output", "", "Output format: json, yaml, or table")
	outFile := fs.String("out", "", "Write the manifest to this file instead of stdout")
	minConfidence := fs.String("min-confidence", "", "Drop entries below this confidence: high, medium, or low")
	configPath := fs.String("config", "", "Path to the project config file (default: <root>/.depscan.yaml)")
	workers := fs.Int("workers", 0, "Override the scheduler's worker count (0: auto)")
	useProcessEnv := fs.Bool("use-process-env", false, "Resolve ${VAR} templates against the process environment")
	jsonOut := fs.Bool("json", false, "Output the run's error payload (if any) as JSON")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: depscan scan [path] [options]

Walks the repository at [path] (default: current directory), dispatching
every registered language analyzer and ecosystem manifest/lockfile parser,
and prints the resulting Dependency Manifest.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	globals := GlobalFlags{JSON: *jsonOut, Quiet: *quiet, NoColor: *noColor}
	ui.InitColors(globals.NoColor)

	scanRoot := "."
	if rest := fs.Args(); len(rest) > 0 {
		scanRoot = rest[0]
	}
	absRoot, err := filepath.Abs(scanRoot)
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"Invalid scan root",
			err.Error(),
			"Pass a valid directory path",
		), globals.JSON)
	}

	cfg, err := config.Load(absRoot, *configPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot read project config",
			err.Error(),
			"Fix the config file and re-run the scan",
			err,
		), globals.JSON)
	}
	if *outputFormat != "" {
		cfg.Output = *outputFormat
	}
	if *outFile != "" {
		cfg.OutFile = *outFile
	}
	if *minConfidence != "" {
		c := manifest.Confidence(*minConfidence)
		switch c {
		case manifest.ConfidenceHigh, manifest.ConfidenceMedium, manifest.ConfidenceLow:
			cfg.MinConfidence = c
		default:
			errors.FatalError(errors.NewConfigError(
				"Invalid --min-confidence value",
				fmt.Sprintf("unrecognised confidence %q (want high, medium, or low)", *minConfidence),
				"Pass one of: high, medium, low",
				nil,
			), globals.JSON)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError("Cannot determine the working directory", err.Error(), "", err), globals.JSON)
	}
	resolvedOutFile, err := config.ResolveOutputPath(cwd, cfg.OutFile)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Invalid output path",
			err.Error(),
			"Pass an --out path inside the current working directory",
			err,
		), globals.JSON)
	}

	resolver, err := envresolver.Build(envresolver.BuildOptions{
		UseProcessEnv: *useProcessEnv,
		DotenvPath:    filepath.Join(absRoot, ".env"),
		ConfigEnv:     cfg.Env,
	})
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot resolve the environment",
			err.Error(),
			"Check the env: section of the project config and any .env file",
			err,
		), globals.JSON)
	}

	registry := buildRegistry()

	runID := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger = logger.With("run_id", runID)

	progressCfg := NewProgressConfig(globals)
	spinner := NewSpinner(progressCfg, "scanning "+absRoot)
	stopSpin := make(chan struct{})
	if spinner != nil {
		go func() {
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-stopSpin:
					return
				case <-ticker.C:
					_ = spinner.Add(1)
				}
			}
		}()
	}

	result, err := scanner.Run(context.Background(), scanner.Options{
		ScanRoot: absRoot,
		Config:   cfg,
		Registry: registry,
		Resolver: resolver,
		Workers:  *workers,
		Logger:   logger,
	})

	if spinner != nil {
		close(stopSpin)
		_ = spinner.Finish()
	}

	if err != nil {
		var verr *manifest.ValidationError
		switch {
		case stderrors.As(err, &verr):
			errors.FatalError(errors.NewValidationError(
				"Aggregated manifest failed validation",
				verr.Message,
				"This usually points at a plugin emitting malformed findings; please report it",
				err,
			), globals.JSON)
		case result != nil && result.State == scanner.StateFailed:
			errors.FatalError(errors.NewWalkError(
				"Scan failed",
				err.Error(),
				"Check the scan root path and its permissions",
				err,
			), globals.JSON)
		default:
			errors.FatalError(errors.NewInternalError(
				"Scan failed unexpectedly",
				err.Error(),
				"This is a bug. Please report it with the run_id above",
				err,
			), globals.JSON)
		}
	}

	if len(result.ScanErrors) > 0 && !globals.Quiet {
		ui.Warningf("%d file(s) could not be analyzed:", len(result.ScanErrors))
		for _, se := range result.ScanErrors {
			ui.Warningf("  %s: %s", se.FilePath, se.ErrorMessage)
		}
	}

	writeManifest(result, cfg.Output, resolvedOutFile, globals)

	if !globals.Quiet && !globals.JSON {
		ui.Successf("Scanned %d file(s), %d skipped, in %s", result.FilesScanned, result.FilesSkipped, result.Duration.Round(time.Millisecond))
	}
}

// buildRegistry wires every known language and ecosystem plugin into a
// single registry, shared read-only across the scheduler's worker pool.
func buildRegistry() *plugin.Registry {
	registry := plugin.NewRegistry()

	_ = registry.Register(golang.New())
	_ = registry.Register(python.New())
	_ = registry.Register(javascript.New())
	_ = registry.Register(java.New())

	registry.RegisterManifestAnalyzer(gomod.New())
	registry.RegisterManifestAnalyzer(npm.New())
	registry.RegisterManifestAnalyzer(pypi.New())
	registry.RegisterManifestAnalyzer(cargo.New())
	registry.RegisterManifestAnalyzer(composer.New())

	return registry
}

// writeManifest encodes result.Manifest in the requested format and
// writes it to outFile (or stdout when empty).
func writeManifest(result *scanner.Result, format, outFile string, globals GlobalFlags) {
	var w *os.File = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			errors.FatalError(errors.NewPermissionError(
				"Cannot write the manifest",
				err.Error(),
				"Pass a writable --out path",
				err,
			), globals.JSON)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result.Manifest); err != nil {
			errors.FatalError(errors.NewInternalError("Cannot encode manifest as YAML", err.Error(), "", err), globals.JSON)
		}
		_ = enc.Close()
	case "table":
		printManifestTable(w, result.Manifest)
	default:
		if err := output.JSONTo(w, result.Manifest); err != nil {
			errors.FatalError(errors.NewInternalError("Cannot encode manifest as JSON", err.Error(), "", err), globals.JSON)
		}
	}
}

// printManifestTable renders a compact human-readable summary, used by
// --output table for quick terminal inspection.
func printManifestTable(w *os.File, m *manifest.Manifest) {
	fmt.Fprintf(w, "Dependency Manifest (scanned %s)\n", m.Metadata.ScanTimestamp)
	fmt.Fprintf(w, "%-12s %-40s %-12s %s\n", "KIND", "NAME", "CONFIDENCE", "USAGE")
	for _, p := range m.Packages {
		fmt.Fprintf(w, "%-12s %-40s %-12s %d\n", "package", p.Name, p.Confidence, p.UsageCount)
	}
	for _, a := range m.APIs {
		fmt.Fprintf(w, "%-12s %-40s %-12s %d\n", "api", a.URL, a.Confidence, a.UsageCount)
	}
	for _, s := range m.SDKs {
		fmt.Fprintf(w, "%-12s %-40s %-12s %d\n", "sdk", s.Provider+"/"+s.SDKPackage, s.Confidence, s.UsageCount)
	}
	for _, i := range m.Infrastructure {
		fmt.Fprintf(w, "%-12s %-40s %-12s %d\n", "infra", i.Type+"/"+i.ConnectionRef, i.Confidence, i.UsageCount)
	}
	for _, wh := range m.Webhooks {
		fmt.Fprintf(w, "%-12s %-40s %-12s %d\n", "webhook", wh.TargetURL, wh.Confidence, wh.UsageCount)
	}
	fmt.Fprintf(w, "\nTotal dependencies found: %d\n", m.Metadata.TotalDependenciesFound)
}
