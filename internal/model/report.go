package model

import (
	"math"
	"time"
)

// Report represents the complete drift analysis report
type Report struct {
	RunID       string    `json:"run_id"`
	Root        string    `json:"root"`         // Repository root that was scanned
	GeneratedAt time.Time `json:"generated_at"` // When the scan occurred
	Documents   int       `json:"documents"`    // Number of documents read

	Claims   []FeatureClaim `json:"claims"`   // Extracted claims
	Evidence EvidenceResult `json:"evidence"` // Per-claim evidence (available=false without a snapshot)

	Summary DriftSummary `json:"summary"` // Coverage and plan drift
	Stats   ScanStats    `json:"stats"`   // Bounded-scan accounting
}

// DriftSummary aggregates evidence statuses into coverage and mismatch buckets
type DriftSummary struct {
	Available  bool          `json:"available"`
	Overall    CoverageStats `json:"overall"`
	Features   CoverageStats `json:"features"` // Documented capability drift
	Plan       CoverageStats `json:"plan"`     // Planned work drift
	Mismatches Mismatches    `json:"mismatches"`
	Signals    []Signal      `json:"signals"`
}

// CoverageStats counts statuses and the weighted coverage ratio
type CoverageStats struct {
	Total            int     `json:"total"`
	Implemented      int     `json:"implemented"`
	Partial          int     `json:"partial"`
	Missing          int     `json:"missing"`
	TotalWeight      float64 `json:"total_weight"`
	WeightedCoverage float64 `json:"weighted_coverage"` // (impl + 0.5*partial) / total, by weight

	implementedWeight float64
	partialWeight     float64
}

// Mismatches lists plan/checkbox claims whose declared state contradicts evidence.
// Lists are capped for brevity; the counts are not.
type Mismatches struct {
	CheckedButMissing       []MismatchEntry `json:"checked_but_missing"`
	UncheckedButImplemented []MismatchEntry `json:"unchecked_but_implemented"`
	PlannedButImplemented   []MismatchEntry `json:"planned_but_implemented"`

	CheckedButMissingCount       int `json:"checked_but_missing_count"`
	UncheckedButImplementedCount int `json:"unchecked_but_implemented_count"`
	PlannedButImplementedCount   int `json:"planned_but_implemented_count"`
}

// MismatchEntry identifies a drifting claim
type MismatchEntry struct {
	Claim      string         `json:"claim"`
	SourceFile string         `json:"source_file"`
	SourceLine int            `json:"source_line"`
	Status     EvidenceStatus `json:"status"`
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`           // Signal classification
	Severity    SignalSeverity         `json:"severity"`       // info, warning, critical
	Description string                 `json:"description"`    // Human-readable description
	Data        map[string]interface{} `json:"data,omitempty"` // Transparent scoring data (formulas, inputs)
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalFeatureCoverage SignalType = "feature_coverage" // Weighted coverage of documented capabilities
	SignalPlanCoverage    SignalType = "plan_coverage"    // Weighted coverage of roadmap items
	SignalPlanDrift       SignalType = "plan_drift"       // Checkbox/status contradicted by evidence
	SignalTestOnly        SignalType = "test_only"        // Claims backed only by test code
	SignalPartialShare    SignalType = "partial_share"    // Share of claims with weak evidence
	SignalNoSnapshot      SignalType = "no_snapshot"      // Evidence unavailable
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// ScanStats records how much bounded scanning happened during a run
//
// FilesSkipped counts oversized or unreadable files, BudgetExhausted counts scans
// that stopped at a cap, and ClaimsTruncated counts claims beyond max_features.
type ScanStats struct {
	FilesRead        int64 `json:"files_read"`
	FilesSkipped     int64 `json:"files_skipped"`
	BytesRead        int64 `json:"bytes_read"`
	BudgetExhausted  int64 `json:"budget_exhausted"`
	DiskScanFiles    int   `json:"disk_scan_files,omitempty"`
	ClaimsEvaluated  int   `json:"claims_evaluated"`
	ClaimsTruncated  int   `json:"claims_truncated,omitempty"`
	DocumentsSkipped int   `json:"documents_skipped,omitempty"`
}

// Add counts one claim with the given status and weight
func (c *CoverageStats) Add(status EvidenceStatus, weight float64) {
	c.Total++
	c.TotalWeight += weight
	switch status {
	case StatusImplemented:
		c.Implemented++
		c.implementedWeight += weight
	case StatusPartial:
		c.Partial++
		c.partialWeight += weight
	default:
		c.Missing++
	}
}

// Finish computes the weighted coverage from the accumulated counts
func (c *CoverageStats) Finish() {
	c.TotalWeight = Round4(c.TotalWeight)
	if c.TotalWeight == 0 {
		c.WeightedCoverage = 0
		return
	}
	c.WeightedCoverage = Round4((c.implementedWeight + 0.5*c.partialWeight) / c.TotalWeight)
}

// Round4 rounds to four decimals so reports are stable across platforms
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
