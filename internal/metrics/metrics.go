// Package metrics exposes scan results as Prometheus gauges written to a
// node-exporter textfile.
package metrics

import (
	"fmt"

	"github.com/ppiankov/driftscan/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "driftscan"

// Recorder holds the gauges describing the latest scan
type Recorder struct {
	registry *prometheus.Registry

	claims     *prometheus.GaugeVec
	coverage   *prometheus.GaugeVec
	mismatches *prometheus.GaugeVec
	scanned    *prometheus.GaugeVec
	available  prometheus.Gauge
	lastRun    prometheus.Gauge
	scans      prometheus.Counter
}

// New creates a recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		claims: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "claims",
			Help:      "Claims by group and evidence status.",
		}, []string{"group", "status"}),
		coverage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weighted_coverage_ratio",
			Help:      "Weighted coverage (implemented + 0.5*partial) / total by group.",
		}, []string{"group"}),
		mismatches: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mismatches",
			Help:      "Plan and checkbox claims contradicted by evidence.",
		}, []string{"kind"}),
		scanned: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_stat",
			Help:      "Bounded-scan accounting of the latest run.",
		}, []string{"stat"}),
		available: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "evidence_available",
			Help:      "1 when a repository snapshot backed the latest scan.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the latest scan.",
		}),
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scans observed by this process.",
		}),
	}
	r.registry.MustRegister(r.claims, r.coverage, r.mismatches, r.scanned, r.available, r.lastRun, r.scans)
	return r
}

// Registry returns the registry holding the recorder's collectors
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe replaces the gauges with the values of report
func (r *Recorder) Observe(report *model.Report) {
	s := report.Summary

	r.claims.Reset()
	r.coverage.Reset()
	for group, cs := range map[string]model.CoverageStats{
		"overall":  s.Overall,
		"features": s.Features,
		"plan":     s.Plan,
	} {
		r.claims.WithLabelValues(group, string(model.StatusImplemented)).Set(float64(cs.Implemented))
		r.claims.WithLabelValues(group, string(model.StatusPartial)).Set(float64(cs.Partial))
		r.claims.WithLabelValues(group, string(model.StatusMissing)).Set(float64(cs.Missing))
		r.coverage.WithLabelValues(group).Set(cs.WeightedCoverage)
	}

	m := s.Mismatches
	r.mismatches.WithLabelValues("checked_but_missing").Set(float64(m.CheckedButMissingCount))
	r.mismatches.WithLabelValues("unchecked_but_implemented").Set(float64(m.UncheckedButImplementedCount))
	r.mismatches.WithLabelValues("planned_but_implemented").Set(float64(m.PlannedButImplementedCount))

	st := report.Stats
	r.scanned.WithLabelValues("files_read").Set(float64(st.FilesRead))
	r.scanned.WithLabelValues("files_skipped").Set(float64(st.FilesSkipped))
	r.scanned.WithLabelValues("bytes_read").Set(float64(st.BytesRead))
	r.scanned.WithLabelValues("budget_exhausted").Set(float64(st.BudgetExhausted))
	r.scanned.WithLabelValues("claims_evaluated").Set(float64(st.ClaimsEvaluated))
	r.scanned.WithLabelValues("claims_truncated").Set(float64(st.ClaimsTruncated))
	r.scanned.WithLabelValues("documents").Set(float64(report.Documents))

	if s.Available {
		r.available.Set(1)
	} else {
		r.available.Set(0)
	}
	r.lastRun.Set(float64(report.GeneratedAt.Unix()))
	r.scans.Inc()
}

// WriteTextfile atomically writes the registry in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
