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

package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/kraklabs/depscan/pkg/aggregate"
	"github.com/kraklabs/depscan/pkg/config"
	"github.com/kraklabs/depscan/pkg/envresolver"
	"github.com/kraklabs/depscan/pkg/manifest"
	"github.com/kraklabs/depscan/pkg/plugin"
	"github.com/kraklabs/depscan/pkg/reconcile"
	"github.com/kraklabs/depscan/pkg/walker"
)

// State is one of the scheduler's trivial state-machine states.
type State string

// Recognised states. Failed is terminal and only reached on an
// unrecoverable error; every other error is captured per-file.
const (
	StateIdle       State = "idle"
	StateWalking    State = "walking"
	StateDispatched State = "dispatched"
	StateReducing   State = "reducing"
	StateValidated  State = "validated"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// ScanError pairs a failing file with its error message, collected
// into scan_errors[] rather than aborting the run.
type ScanError struct {
	FilePath     string `json:"file_path"`
	ErrorMessage string `json:"error_message"`
}

// Options configures a single scan run.
type Options struct {
	ScanRoot string
	Config   *config.Config
	Registry *plugin.Registry
	Resolver *envresolver.Resolver

	// Workers bounds the source-file analyze pool. Zero selects the
	// default min(16, max(8, NumCPU())).
	Workers int

	Logger *slog.Logger
}

// Result is the outcome of a scan: a validated manifest plus the
// bookkeeping the caller surfaces in CLI output.
type Result struct {
	Manifest     *manifest.Manifest
	ScanErrors   []ScanError
	FilesScanned int
	FilesSkipped int
	Duration     time.Duration
	State        State
}

// defaultWorkerCount implements min(16, max(8, available_parallelism)).
func defaultWorkerCount() int {
	n := runtime.NumCPU()
	if n < 8 {
		n = 8
	}
	if n > 16 {
		n = 16
	}
	return n
}

// Run executes the scheduler's full pipeline: walk, dispatch, reduce,
// validate. A fatal error (inaccessible scan root, validation failure)
// returns a non-nil error and a Result in the failed state; everything
// else is isolated into ScanErrors.
func Run(ctx context.Context, opts Options) (*Result, error) {
	scanMetrics.init()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	logger.Info("scan.step.walking", "scan_root", opts.ScanRoot)

	ignore := config.NewIgnoreMatcher()
	if opts.Config != nil {
		ignore.AddPatterns(opts.Config.Ignore)
	}
	if err := ignore.LoadFile(filepath.Join(opts.ScanRoot, config.DefaultIgnoreName)); err != nil {
		logger.Warn("scan.ignorefile.error", "err", err)
	}

	var maxFileSizeBytes int64
	if opts.Config != nil && opts.Config.MaxFileSizeMB > 0 {
		maxFileSizeBytes = int64(opts.Config.MaxFileSizeMB * 1024 * 1024)
	}

	walkStart := time.Now()
	walkResult, err := walker.Walk(walker.Options{
		ScanRoot:          opts.ScanRoot,
		Ignore:            ignore,
		ManifestBasenames: opts.Registry.ManifestBasenames(),
		SourceExtensions:  opts.Registry.SourceExtensions(),
		MaxFileSizeBytes:  maxFileSizeBytes,
		Logger:            logger,
	})
	scanMetrics.walkDuration.Observe(time.Since(walkStart).Seconds())
	if err != nil {
		logger.Error("scan.walk.fatal", "err", err)
		return &Result{State: StateFailed, Duration: time.Since(start)}, fmt.Errorf("walk scan root: %w", err)
	}

	filesSkipped := 0
	for _, n := range walkResult.SkipReasons {
		filesSkipped += n
	}

	logger.Info("scan.step.dispatched", "manifest_files", len(walkResult.ManifestFiles), "source_files", len(walkResult.SourceFiles))
	analyzeStart := time.Now()

	manifestFindings, manifestErrs := dispatchManifestAnalyzers(opts.Registry, walkResult.ManifestFiles, opts.ScanRoot)
	sourceFindings, sourceErrs := dispatchSourceAnalysis(ctx, opts.Registry, opts.Resolver, walkResult.SourceFiles, opts.ScanRoot, workerCount(opts.Workers))

	scanMetrics.analyzeDuration.Observe(time.Since(analyzeStart).Seconds())
	for range manifestErrs {
		scanMetrics.manifestErrors.Inc()
	}
	for range sourceErrs {
		scanMetrics.fileErrors.Inc()
	}
	scanMetrics.filesScanned.Add(float64(len(walkResult.SourceFiles) - len(sourceErrs)))
	scanMetrics.filesSkipped.Add(float64(filesSkipped))

	logger.Info("scan.step.reducing")
	reduceStart := time.Now()

	all := append(reconcile.Reconcile(manifestFindings), sourceFindings...)

	meta := manifest.Metadata{
		ScanTimestamp:     start.UTC().Format(time.RFC3339),
		ScannerVersion:    scannerVersion(),
		Repository:        opts.ScanRoot,
		LanguagesDetected: languagesDetected(opts.Registry, walkResult.SourceFiles),
	}

	var minConfidence manifest.Confidence
	if opts.Config != nil {
		minConfidence = opts.Config.MinConfidence
	}
	m, verr, aggErr := aggregate.Aggregate(all, meta, minConfidence)
	scanMetrics.aggregateDuration.Observe(time.Since(reduceStart).Seconds())
	if aggErr != nil {
		logger.Error("scan.aggregate.fatal", "err", aggErr)
		return &Result{State: StateFailed, Duration: time.Since(start)}, fmt.Errorf("aggregate findings: %w", aggErr)
	}
	if verr != nil {
		logger.Error("scan.validate.fatal", "err", verr.Message)
		return &Result{State: StateFailed, Duration: time.Since(start)}, verr
	}

	logger.Info("scan.step.validated")
	m.Metadata.ScanDurationMS = time.Since(start).Milliseconds()

	scanErrors := make([]ScanError, 0, len(manifestErrs)+len(sourceErrs))
	scanErrors = append(scanErrors, manifestErrs...)
	scanErrors = append(scanErrors, sourceErrs...)

	result := &Result{
		Manifest:     m,
		ScanErrors:   scanErrors,
		FilesScanned: len(walkResult.SourceFiles) - len(sourceErrs),
		FilesSkipped: filesSkipped,
		Duration:     time.Since(start),
		State:        StateDone,
	}
	scanMetrics.totalDuration.Observe(result.Duration.Seconds())

	logger.Info("scan.complete",
		"files_scanned", result.FilesScanned,
		"files_skipped", result.FilesSkipped,
		"scan_errors", len(result.ScanErrors),
		"packages", len(m.Packages),
		"apis", len(m.APIs),
		"sdks", len(m.SDKs),
		"infrastructure", len(m.Infrastructure),
		"webhooks", len(m.Webhooks),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func workerCount(requested int) int {
	if requested > 0 {
		return requested
	}
	return defaultWorkerCount()
}

// dispatchManifestAnalyzers groups manifest files by the analyzer that
// claims their basename and runs each analyzer once with every path it
// claims, in parallel. A parser failure is logged and
// recorded in scan_errors but never aborts the scan.
func dispatchManifestAnalyzers(registry *plugin.Registry, files []walker.FileInfo, scanRoot string) ([]manifest.Finding, []ScanError) {
	byAnalyzer := make(map[plugin.ManifestAnalyzer][]string)
	for _, f := range files {
		base := filepath.Base(f.RelPath)
		ma, ok := registry.ForBasename(base)
		if !ok && walker.DefaultRequirementsPattern.MatchString(base) {
			ma, ok = registry.ForBasename("requirements.txt")
		}
		if !ok {
			continue
		}
		byAnalyzer[ma] = append(byAnalyzer[ma], f.AbsPath)
	}

	type outcome struct {
		findings []manifest.Finding
		scanErr  *ScanError
	}

	var wg sync.WaitGroup
	outcomes := make([]outcome, len(byAnalyzer))
	i := 0
	for ma, paths := range byAnalyzer {
		wg.Add(1)
		go func(i int, ma plugin.ManifestAnalyzer, paths []string) {
			defer wg.Done()
			findings, err := ma.AnalyzeManifests(paths, scanRoot)
			if err != nil {
				outcomes[i].scanErr = &ScanError{FilePath: paths[0], ErrorMessage: err.Error()}
				return
			}
			outcomes[i].findings = findings
		}(i, ma, paths)
		i++
	}
	wg.Wait()

	var findings []manifest.Finding
	var errs []ScanError
	for _, o := range outcomes {
		findings = append(findings, o.findings...)
		if o.scanErr != nil {
			errs = append(errs, *o.scanErr)
		}
	}
	return findings, errs
}

// dispatchSourceAnalysis runs plugin.Analyze over every discovered
// source file across a bounded worker pool. Each task
// reads the file and invokes the plugin; failures are isolated into
// scan_errors and never abort the run.
func dispatchSourceAnalysis(ctx context.Context, registry *plugin.Registry, resolver *envresolver.Resolver, files []walker.FileInfo, scanRoot string, workers int) ([]manifest.Finding, []ScanError) {
	if len(files) == 0 {
		return nil, nil
	}
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan walker.FileInfo, len(files))
	for _, f := range files {
		jobs <- f
	}
	close(jobs)

	type taskResult struct {
		findings []manifest.Finding
		scanErr  *ScanError
	}
	results := make(chan taskResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				p, ok := registry.ForExtension(extOf(f.RelPath))
				if !ok {
					continue
				}

				data, err := os.ReadFile(f.AbsPath)
				if err != nil {
					results <- taskResult{scanErr: &ScanError{FilePath: f.RelPath, ErrorMessage: err.Error()}}
					continue
				}

				findings, err := p.Analyze(plugin.SourceContext{
					FilePath:    f.RelPath,
					SourceText:  string(data),
					ScanRoot:    scanRoot,
					ResolvedEnv: resolver,
				})
				if err != nil {
					results <- taskResult{scanErr: &ScanError{FilePath: f.RelPath, ErrorMessage: err.Error()}}
					continue
				}
				results <- taskResult{findings: findings}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var findings []manifest.Finding
	var errs []ScanError
	for r := range results {
		findings = append(findings, r.findings...)
		if r.scanErr != nil {
			errs = append(errs, *r.scanErr)
		}
	}
	return findings, errs
}

func extOf(relPath string) string {
	return strings.ToLower(filepath.Ext(relPath))
}

func languagesDetected(registry *plugin.Registry, files []walker.FileInfo) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range files {
		p, ok := registry.ForExtension(extOf(f.RelPath))
		if !ok {
			continue
		}
		if _, ok := seen[p.Language()]; ok {
			continue
		}
		seen[p.Language()] = struct{}{}
		out = append(out, p.Language())
	}
	return out
}

// scannerVersion is overridden at build time via -ldflags; "dev"
// otherwise.
var buildVersion = "dev"

func scannerVersion() string { return buildVersion }
