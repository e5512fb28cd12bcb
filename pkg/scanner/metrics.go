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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsScanner holds the scheduler's Prometheus instrumentation.
type metricsScanner struct {
	once sync.Once

	filesScanned   prometheus.Counter
	filesSkipped   prometheus.Counter
	fileErrors     prometheus.Counter
	manifestErrors prometheus.Counter

	walkDuration      prometheus.Histogram
	analyzeDuration   prometheus.Histogram
	aggregateDuration prometheus.Histogram
	totalDuration     prometheus.Histogram
}

var scanMetrics metricsScanner

func (m *metricsScanner) init() {
	m.once.Do(func() {
		m.filesScanned = prometheus.NewCounter(prometheus.CounterOpts{Name: "depscan_files_scanned_total", Help: "Source files successfully analyzed"})
		m.filesSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "depscan_files_skipped_total", Help: "Files skipped by the walker (size, symlink, ignore)"})
		m.fileErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "depscan_file_errors_total", Help: "Per-file analyze failures"})
		m.manifestErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "depscan_manifest_errors_total", Help: "Manifest/lockfile parser failures"})

		buckets := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
		m.walkDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "depscan_walk_seconds", Help: "Duration of the file-walk phase", Buckets: buckets})
		m.analyzeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "depscan_analyze_seconds", Help: "Duration of the dispatched analyze phase", Buckets: buckets})
		m.aggregateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "depscan_aggregate_seconds", Help: "Duration of the reduce/validate phase", Buckets: buckets})
		m.totalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "depscan_scan_seconds", Help: "Total wall-clock duration of a scan", Buckets: buckets})

		prometheus.MustRegister(
			m.filesScanned, m.filesSkipped, m.fileErrors, m.manifestErrors,
			m.walkDuration, m.analyzeDuration, m.aggregateDuration, m.totalDuration,
		)
	})
}
