package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/driftscan/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *model.Report {
	return &model.Report{
		GeneratedAt: time.Unix(1700000000, 0).UTC(),
		Documents:   2,
		Summary: model.DriftSummary{
			Available:  true,
			Overall:    model.CoverageStats{Total: 3, Implemented: 1, Partial: 1, Missing: 1, WeightedCoverage: 0.5},
			Features:   model.CoverageStats{Total: 2, Implemented: 1, Missing: 1, WeightedCoverage: 0.5},
			Plan:       model.CoverageStats{Total: 1, Partial: 1, WeightedCoverage: 0.5},
			Mismatches: model.Mismatches{CheckedButMissingCount: 2},
		},
		Stats: model.ScanStats{FilesRead: 7, BudgetExhausted: 1, ClaimsEvaluated: 3},
	}
}

func TestObserve(t *testing.T) {
	r := New()
	r.Observe(sampleReport())

	assert.Equal(t, 1.0, testutil.ToFloat64(r.claims.WithLabelValues("features", "implemented")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.claims.WithLabelValues("plan", "partial")))
	assert.Equal(t, 0.5, testutil.ToFloat64(r.coverage.WithLabelValues("overall")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.mismatches.WithLabelValues("checked_but_missing")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.scanned.WithLabelValues("files_read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.available))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.lastRun))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.scans))
}

func TestObserve_Repeated(t *testing.T) {
	r := New()
	r.Observe(sampleReport())

	next := sampleReport()
	next.Summary.Available = false
	r.Observe(next)

	assert.Equal(t, 0.0, testutil.ToFloat64(r.available))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.scans))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Observe(sampleReport())

	path := filepath.Join(t.TempDir(), "driftscan.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `driftscan_weighted_coverage_ratio{group="features"} 0.5`)
	assert.Contains(t, text, `driftscan_mismatches{kind="checked_but_missing"} 2`)
	assert.Contains(t, text, "driftscan_scans_total 1")
}

func TestWriteTextfile_BadDir(t *testing.T) {
	err := New().WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
