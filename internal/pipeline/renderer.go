package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/ppiankov/driftscan/internal/model"
)

// Renderer writes reports as JSON and prints console summaries
type Renderer struct {
	out      io.Writer
	ok       *color.Color
	warn     *color.Color
	critical *color.Color
	bold     *color.Color
}

// NewRenderer creates a renderer printing summaries to out
func NewRenderer(out io.Writer, useColor bool) *Renderer {
	r := &Renderer{
		out:      out,
		ok:       color.New(color.FgGreen),
		warn:     color.New(color.FgYellow),
		critical: color.New(color.FgRed, color.Bold),
		bold:     color.New(color.Bold),
	}
	for _, c := range []*color.Color{r.ok, r.warn, r.critical, r.bold} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// RenderJSON writes the report to path; "-" writes to stdout
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderSummary prints a short human-readable overview of the report
func (r *Renderer) RenderSummary(report *model.Report) {
	s := report.Summary
	fmt.Fprintln(r.out)
	r.bold.Fprintf(r.out, "Drift summary: %s\n", report.Root)
	fmt.Fprintf(r.out, "  Documents: %d  Claims: %d  Run: %s\n", report.Documents, len(report.Claims), report.RunID)

	if !s.Available {
		r.warn.Fprintf(r.out, "  Evidence unavailable (%s): no snapshot found\n", report.Evidence.Reason)
		fmt.Fprintln(r.out)
		return
	}

	r.coverageLine("Features", s.Features)
	r.coverageLine("Plan", s.Plan)

	m := s.Mismatches
	fmt.Fprintf(r.out, "  Mismatches: checked but missing %d, unchecked but implemented %d, planned but implemented %d\n",
		m.CheckedButMissingCount, m.UncheckedButImplementedCount, m.PlannedButImplementedCount)
	for _, e := range m.CheckedButMissing {
		r.critical.Fprintf(r.out, "    ✗ %s (%s:%d)\n", e.Claim, e.SourceFile, e.SourceLine)
	}
	for _, e := range m.UncheckedButImplemented {
		r.warn.Fprintf(r.out, "    ○ %s (%s:%d)\n", e.Claim, e.SourceFile, e.SourceLine)
	}
	for _, e := range m.PlannedButImplemented {
		r.warn.Fprintf(r.out, "    ○ %s (%s:%d)\n", e.Claim, e.SourceFile, e.SourceLine)
	}

	if len(s.Signals) > 0 {
		fmt.Fprintln(r.out, "  Signals:")
		for _, sig := range s.Signals {
			r.severity(sig.Severity).Fprintf(r.out, "    [%s] %s\n", sig.Severity, sig.Description)
		}
	}

	st := report.Stats
	if st.BudgetExhausted > 0 || st.ClaimsTruncated > 0 {
		r.warn.Fprintf(r.out, "  Bounded scan: %d budget stops, %d claims truncated\n", st.BudgetExhausted, st.ClaimsTruncated)
	}
	fmt.Fprintln(r.out)
}

func (r *Renderer) coverageLine(label string, cs model.CoverageStats) {
	if cs.Total == 0 {
		fmt.Fprintf(r.out, "  %-9s no claims\n", label+":")
		return
	}
	c := r.ok
	switch {
	case cs.WeightedCoverage < 0.5:
		c = r.critical
	case cs.WeightedCoverage < 0.8:
		c = r.warn
	}
	fmt.Fprintf(r.out, "  %-9s ", label+":")
	c.Fprintf(r.out, "%5.1f%%", cs.WeightedCoverage*100)
	fmt.Fprintf(r.out, " (implemented %d, partial %d, missing %d)\n", cs.Implemented, cs.Partial, cs.Missing)
}

func (r *Renderer) severity(s model.SignalSeverity) *color.Color {
	switch s {
	case model.SeverityCritical:
		return r.critical
	case model.SeverityWarning:
		return r.warn
	default:
		return r.ok
	}
}
