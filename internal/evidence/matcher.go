// Package evidence confirms documentation claims against a repository
// snapshot: symbol scoring, usage, and file/flag fallbacks.
package evidence

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/snapshot"
	"github.com/ppiankov/driftscan/internal/worker"
)

// Reasons recorded on evidence records
const (
	ReasonSymbolUsed   = "symbol_used"
	ReasonFlagMatch    = "flag_match"
	ReasonFileFallback = "file_fallback"
	ReasonSymbolUnused = "symbol_unused"
	ReasonFilePartial  = "file_partial"
	ReasonNoTokens     = "no_tokens"
	ReasonNoMatch      = "no_match"
	ReasonNoSnapshot   = "no_snapshot"
)

// Snippets per claim
const maxSnippets = 3

// Matcher gathers evidence for claims. It is safe for concurrent use.
type Matcher struct {
	index        *snapshot.Index
	available    bool
	root         string
	reader       *SourceReader
	limits       model.Limits
	match        model.MatchConfig
	excludeGlobs []string
	workers      int
	logger       *slog.Logger

	tiers symbolTiers

	filesOnce sync.Once
	files     []fileCandidate
	diskFiles int
}

// Option configures a Matcher
type Option func(*Matcher)

// WithReader sets the source reader used for literal scans and snippets
func WithReader(r *SourceReader) Option {
	return func(m *Matcher) { m.reader = r }
}

// WithMatchConfig sets the fallback promotion thresholds
func WithMatchConfig(c model.MatchConfig) Option {
	return func(m *Matcher) { m.match = c.Normalize() }
}

// WithExcludeGlobs sets doublestar globs skipped by the disk scan
func WithExcludeGlobs(globs []string) Option {
	return func(m *Matcher) { m.excludeGlobs = globs }
}

// WithWorkers sets the number of claims evaluated concurrently
func WithWorkers(n int) Option {
	return func(m *Matcher) { m.workers = n }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) { m.logger = l }
}

// NewMatcher creates a matcher over a snapshot rooted at root. A nil snapshot
// makes every result unavailable.
func NewMatcher(snap *snapshot.Snapshot, root string, limits model.Limits, opts ...Option) *Matcher {
	m := &Matcher{
		index:     snapshot.NewIndex(snap),
		available: snap != nil,
		root:      root,
		limits:    limits.Normalize(),
		match:     model.DefaultMatchConfig(),
		workers:   1,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.reader == nil {
		m.reader = NewSourceReader(root, m.limits.MaxFileBytes)
	}
	m.tiers = buildTiers(m.index)
	return m
}

// Available reports whether a snapshot backs the matcher
func (m *Matcher) Available() bool { return m.available }

// Run evaluates every claim and returns records in claim order
func (m *Matcher) Run(ctx context.Context, claims []model.FeatureClaim) model.EvidenceResult {
	if !m.available {
		return model.EvidenceResult{Available: false, Reason: ReasonNoSnapshot, Records: []model.EvidenceRecord{}}
	}
	records, evaluated := worker.NewBatchProcessor(m, m.workers).ProcessClaims(ctx, claims)
	if evaluated < len(claims) {
		m.logger.Warn("evaluation cancelled", "evaluated", evaluated, "claims", len(claims))
	}
	return model.EvidenceResult{Available: true, Records: records}
}

// Evaluate gathers evidence for one claim. It never fails; missing inputs
// produce a missing record.
func (m *Matcher) Evaluate(ctx context.Context, c model.FeatureClaim) model.EvidenceRecord {
	rec := model.EvidenceRecord{
		Claim:           c.RawText,
		SourceFile:      c.SourceFile,
		SourceLine:      c.SourceLine,
		Status:          model.StatusMissing,
		Reason:          ReasonNoMatch,
		Definitions:     []model.Definition{},
		UsageReferences: []model.UsageReference{},
		Snippets:        []model.Snippet{},
	}
	if len(c.Tokens) == 0 {
		rec.Reason = ReasonNoTokens
		return rec
	}

	defs := m.matchSymbols(c)
	var refs []model.UsageReference
	used := false
	for i := range defs {
		ok, r := m.usage(ctx, defs[i])
		defs[i].Used = ok
		used = used || ok
		refs = append(refs, r...)
	}
	if len(defs) > 0 {
		rec.Definitions = defs
	}
	rec.UsageReferences = mergeReferences(refs, m.limits.MaxRefsPerFeature)

	if used {
		rec.Status = model.StatusImplemented
		rec.Reason = ReasonSymbolUsed
	} else {
		m.fallback(ctx, c, &rec)
	}
	rec.Snippets = m.snippets(ctx, rec)

	m.logger.Debug("claim evaluated",
		"claim", c.RawText,
		"status", rec.Status,
		"reason", rec.Reason,
		"definitions", len(rec.Definitions),
		"fallback", len(rec.Fallback))
	return rec
}

// fallback runs the file-path and flag-hint matchers and promotes the record
func (m *Matcher) fallback(ctx context.Context, c model.FeatureClaim, rec *model.EvidenceRecord) {
	files := m.matchFiles(c)
	flags := m.matchFlags(ctx, flagHints(c))

	fileCap := m.limits.MaxDefsPerFeature
	shown := files
	if len(shown) > fileCap {
		shown = shown[:fileCap]
	}
	rec.Fallback = append(append([]model.Match{}, flags...), shown...)
	if len(rec.Fallback) == 0 {
		rec.Fallback = nil
	}

	threshold := m.match.FileMatchesForImplemented
	if !c.HasNonGeneric {
		threshold = m.match.GenericFileMatchesForImplemented
	}

	switch {
	case len(flags) > 0:
		rec.Status = model.StatusImplemented
		rec.Reason = ReasonFlagMatch
	case len(files) >= threshold:
		rec.Status = model.StatusImplemented
		rec.Reason = ReasonFileFallback
	case len(files) > 0:
		rec.Status = model.StatusPartial
		rec.Reason = ReasonFilePartial
	case len(rec.Definitions) > 0:
		rec.Status = model.StatusPartial
		rec.Reason = ReasonSymbolUnused
	}
}

// snippets reads short windows around the reported definitions and flag matches
func (m *Matcher) snippets(ctx context.Context, rec model.EvidenceRecord) []model.Snippet {
	type loc struct {
		file string
		line int
	}
	var locs []loc
	for _, d := range rec.Definitions {
		locs = append(locs, loc{d.File, d.Line})
	}
	for _, fm := range rec.Fallback {
		if fm.Kind == model.MatchFlag {
			locs = append(locs, loc{fm.Flag.File, fm.Flag.Line})
		}
	}

	out := []model.Snippet{}
	for _, l := range locs {
		if len(out) >= maxSnippets {
			break
		}
		content, ok := m.reader.Read(ctx, l.file)
		if !ok {
			continue
		}
		if s, ok := snippet(l.file, content, l.line, m.limits.SnippetLines); ok {
			out = append(out, s)
		}
	}
	return out
}

// Stats returns bounded-scan counters accumulated so far
func (m *Matcher) Stats() model.ScanStats {
	s := m.reader.Stats()
	s.DiskScanFiles = m.diskFiles
	return s
}
