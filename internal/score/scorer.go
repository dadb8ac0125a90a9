// Package score aggregates evidence into coverage, plan drift and signals.
package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/driftscan/internal/model"
)

// Scorer aggregates evidence records into a drift summary
type Scorer struct {
	bucketCap int
}

// NewScorer creates a new scorer. Mismatch lists are capped at bucketCap;
// a non-positive value uses the default.
func NewScorer(bucketCap int) *Scorer {
	if bucketCap <= 0 {
		bucketCap = model.DefaultMatchConfig().MismatchBucketCap
	}
	return &Scorer{bucketCap: bucketCap}
}

// Calculate pairs claims with their records by index and computes coverage,
// mismatch buckets and diagnostic signals
func (s *Scorer) Calculate(claims []model.FeatureClaim, evidence model.EvidenceResult) model.DriftSummary {
	summary := model.DriftSummary{
		Available:  evidence.Available,
		Mismatches: emptyMismatches(),
		Signals:    []model.Signal{},
	}

	if !evidence.Available {
		for _, c := range claims {
			summary.Overall.Total++
			summary.Overall.TotalWeight += weightOf(c)
		}
		summary.Signals = append(summary.Signals, model.Signal{
			Type:        model.SignalNoSnapshot,
			Severity:    model.SeverityWarning,
			Description: "Evidence unavailable: no repository snapshot",
			Data: map[string]interface{}{
				"reason": evidence.Reason,
				"claims": len(claims),
			},
		})
		return summary
	}

	n := len(claims)
	if len(evidence.Records) < n {
		n = len(evidence.Records)
	}

	testOnly := 0
	for i := 0; i < n; i++ {
		c, r := claims[i], evidence.Records[i]
		if !r.Evaluated() {
			continue
		}
		w := weightOf(c)
		summary.Overall.Add(r.Status, w)
		if c.IsPlan() {
			summary.Plan.Add(r.Status, w)
		} else {
			summary.Features.Add(r.Status, w)
		}
		s.classifyMismatch(&summary.Mismatches, c, r)
		if r.TestOnly() {
			testOnly++
		}
	}
	summary.Overall.Finish()
	summary.Features.Finish()
	summary.Plan.Finish()

	summary.Signals = append(summary.Signals, coverageSignal(model.SignalFeatureCoverage, "Feature", summary.Features))
	if summary.Plan.Total > 0 {
		summary.Signals = append(summary.Signals, coverageSignal(model.SignalPlanCoverage, "Plan", summary.Plan))
	}
	if sig, ok := planDriftSignal(summary.Mismatches); ok {
		summary.Signals = append(summary.Signals, sig)
	}
	if testOnly > 0 {
		summary.Signals = append(summary.Signals, testOnlySignal(testOnly, summary.Overall.Total))
	}
	if summary.Overall.Total > 0 {
		summary.Signals = append(summary.Signals, partialShareSignal(summary.Overall))
	}
	return summary
}

// classifyMismatch files a claim whose declared state contradicts its evidence
func (s *Scorer) classifyMismatch(m *model.Mismatches, c model.FeatureClaim, r model.EvidenceRecord) {
	done := c.Checkbox == model.CheckboxChecked || (c.Plan != nil && c.Plan.Status == model.PlanStatusDone)
	declared := c.Checkbox != model.CheckboxNone || c.Plan != nil

	entry := model.MismatchEntry{
		Claim:      c.RawText,
		SourceFile: c.SourceFile,
		SourceLine: c.SourceLine,
		Status:     r.Status,
	}
	switch {
	case done && r.Status == model.StatusMissing:
		m.CheckedButMissingCount++
		if len(m.CheckedButMissing) < s.bucketCap {
			m.CheckedButMissing = append(m.CheckedButMissing, entry)
		}
	case declared && !done && r.Status == model.StatusImplemented && c.Plan != nil && c.Plan.Status == model.PlanStatusPlanned:
		m.PlannedButImplementedCount++
		if len(m.PlannedButImplemented) < s.bucketCap {
			m.PlannedButImplemented = append(m.PlannedButImplemented, entry)
		}
	case declared && !done && r.Status == model.StatusImplemented:
		m.UncheckedButImplementedCount++
		if len(m.UncheckedButImplemented) < s.bucketCap {
			m.UncheckedButImplemented = append(m.UncheckedButImplemented, entry)
		}
	}
}

func emptyMismatches() model.Mismatches {
	return model.Mismatches{
		CheckedButMissing:       []model.MismatchEntry{},
		UncheckedButImplemented: []model.MismatchEntry{},
		PlannedButImplemented:   []model.MismatchEntry{},
	}
}

func weightOf(c model.FeatureClaim) float64 {
	if c.ConfidenceWeight > 0 {
		return c.ConfidenceWeight
	}
	return c.SourceCategory.Weight()
}

func coverageSignal(typ model.SignalType, label string, cs model.CoverageStats) model.Signal {
	if cs.Total == 0 {
		return model.Signal{
			Type:        typ,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("No %s claims extracted", strings.ToLower(label)),
			Data:        map[string]interface{}{"claims": 0},
		}
	}

	severity := model.SeverityInfo
	if cs.WeightedCoverage < 0.5 {
		severity = model.SeverityCritical
	} else if cs.WeightedCoverage < 0.8 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        typ,
		Severity:    severity,
		Description: fmt.Sprintf("%s coverage: %.0f%% (%d implemented, %d partial, %d missing)", label, cs.WeightedCoverage*100, cs.Implemented, cs.Partial, cs.Missing),
		Data: map[string]interface{}{
			"implemented":       cs.Implemented,
			"partial":           cs.Partial,
			"missing":           cs.Missing,
			"total":             cs.Total,
			"total_weight":      cs.TotalWeight,
			"weighted_coverage": cs.WeightedCoverage,
			"formula":           "(implemented_weight + 0.5 * partial_weight) / total_weight",
		},
	}
}

func planDriftSignal(m model.Mismatches) (model.Signal, bool) {
	total := m.CheckedButMissingCount + m.UncheckedButImplementedCount + m.PlannedButImplementedCount
	if total == 0 {
		return model.Signal{}, false
	}

	severity := model.SeverityWarning
	if m.CheckedButMissingCount > 0 {
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalPlanDrift,
		Severity:    severity,
		Description: fmt.Sprintf("Declared status contradicts evidence for %d claims", total),
		Data: map[string]interface{}{
			"checked_but_missing":       m.CheckedButMissingCount,
			"unchecked_but_implemented": m.UncheckedButImplementedCount,
			"planned_but_implemented":   m.PlannedButImplementedCount,
			"total":                     total,
			"formula":                   "checked_but_missing + unchecked_but_implemented + planned_but_implemented",
		},
	}, true
}

func testOnlySignal(count, total int) model.Signal {
	return model.Signal{
		Type:        model.SignalTestOnly,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d claims are backed only by test code", count),
		Data: map[string]interface{}{
			"test_only": count,
			"total":     total,
			"ratio":     model.Round4(float64(count) / float64(total)),
			"formula":   "claims whose every definition is in test code / total",
		},
	}
}

func partialShareSignal(cs model.CoverageStats) model.Signal {
	ratio := model.Round4(float64(cs.Partial) / float64(cs.Total))

	severity := model.SeverityInfo
	if ratio > 0.5 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalPartialShare,
		Severity:    severity,
		Description: fmt.Sprintf("Weak evidence share: %.0f%%", ratio*100),
		Data: map[string]interface{}{
			"partial": cs.Partial,
			"total":   cs.Total,
			"ratio":   ratio,
			"formula": "partial / total",
		},
	}
}
