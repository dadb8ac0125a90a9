// Package pipeline wires document loading, claim extraction, evidence
// matching and scoring into a single scan.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/driftscan/internal/cache"
	"github.com/ppiankov/driftscan/internal/evidence"
	"github.com/ppiankov/driftscan/internal/extract"
	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/score"
	"github.com/ppiankov/driftscan/internal/snapshot"
	"github.com/ppiankov/driftscan/internal/worker"
)

// Pipeline orchestrates the complete scan process
type Pipeline struct {
	extractor *extract.Extractor
	scorer    *score.Scorer
	renderer  *Renderer
	config    *model.Config
	logger    *slog.Logger
}

// NewPipeline creates a new pipeline with the given configuration. Summaries
// are printed to out.
func NewPipeline(cfg *model.Config, logger *slog.Logger, out io.Writer) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg.Limits = cfg.Limits.Normalize()
	cfg.Match = cfg.Match.Normalize()

	opts := []extract.Option{extract.WithLogger(logger)}
	if cfg.Cache.Enabled {
		opts = append(opts, extract.WithCache(cache.New(cfg.Cache), cfg.Cache.DiskTTL))
	}

	return &Pipeline{
		extractor: extract.NewExtractor(cfg.Limits, opts...),
		scorer:    score.NewScorer(cfg.Match.MismatchBucketCap),
		renderer:  NewRenderer(out, cfg.Output.Color),
		config:    cfg,
		logger:    logger,
	}
}

// ScanResult contains the complete scan result
type ScanResult struct {
	Report *model.Report
}

// ClaimSet is the extraction-only result for a root
type ClaimSet struct {
	Root      string
	Documents int
	Claims    []model.FeatureClaim
	Truncated int
	Skipped   int
}

// Loader returns the document loader for root
func (p *Pipeline) Loader(root string) *Loader {
	return NewLoader(root, p.config.Scan, p.config.Limits.MaxDocumentBytes, p.config.Concurrency.DocumentReads)
}

// Claims loads the documents under root and extracts their claims, capped
// at max_features
func (p *Pipeline) Claims(ctx context.Context, root string) (*ClaimSet, error) {
	loaded, err := p.Loader(root).Load(ctx)
	if err != nil {
		return nil, err
	}
	claims := p.extractor.Extract(loaded.Documents)

	set := &ClaimSet{Root: root, Documents: len(loaded.Documents), Skipped: loaded.Skipped}
	if limit := p.config.Limits.MaxFeatures; len(claims) > limit {
		set.Truncated = len(claims) - limit
		claims = claims[:limit]
	}
	set.Claims = claims
	p.logger.Debug("claims extracted",
		"root", root,
		"documents", set.Documents,
		"claims", len(claims),
		"truncated", set.Truncated)
	return set, nil
}

// Scan runs the full drift analysis for the repository at root
func (p *Pipeline) Scan(ctx context.Context, root string) (*ScanResult, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	// 1. Documents and claims
	set, err := p.Claims(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	// 2. Snapshot
	snap := p.loadSnapshot(abs)

	// 3. Evidence
	contents := cache.NewMemoryCache(p.config.Cache.MemoryTTL, time.Minute)
	reader := evidence.NewSourceReader(abs, p.config.Limits.MaxFileBytes,
		evidence.WithContentCache(contents),
		evidence.WithLimiter(newReadLimiter(p.config.Scan)))
	matcher := evidence.NewMatcher(snap, abs, p.config.Limits,
		evidence.WithReader(reader),
		evidence.WithMatchConfig(p.config.Match),
		evidence.WithExcludeGlobs(p.config.Scan.ExcludeGlobs),
		evidence.WithWorkers(p.config.Concurrency.Workers),
		evidence.WithLogger(p.logger))
	result := matcher.Run(ctx, set.Claims)

	// 4. Score
	summary := p.scorer.Calculate(set.Claims, result)

	stats := matcher.Stats()
	p.logger.Debug("evidence gathered", "files_read", stats.FilesRead, "cached_sources", contents.Len())
	stats.ClaimsEvaluated = evaluated(result)
	stats.ClaimsTruncated = set.Truncated
	stats.DocumentsSkipped = set.Skipped

	report := &model.Report{
		RunID:       uuid.NewString(),
		Root:        abs,
		GeneratedAt: time.Now().UTC(),
		Documents:   set.Documents,
		Claims:      set.Claims,
		Evidence:    result,
		Summary:     summary,
		Stats:       stats,
	}
	if report.Claims == nil {
		report.Claims = []model.FeatureClaim{}
	}
	return &ScanResult{Report: report}, nil
}

// newReadLimiter builds the source read limiter with per-scope overrides
func newReadLimiter(scan model.ScanConfig) *worker.Limiter {
	l := worker.NewLimiter(scan.ReadsPerSecond, scan.ReadBurst)
	for scope, rps := range scan.ScopeReadsPerSecond {
		if rps > 0 {
			l.SetScopeRate(scope, rps, scan.ReadBurst)
		}
	}
	return l
}

// SnapshotPath returns the snapshot location for root
func (p *Pipeline) SnapshotPath(root string) string {
	sp := p.config.Scan.SnapshotPath
	if sp == "" || filepath.IsAbs(sp) {
		return sp
	}
	return filepath.Join(root, sp)
}

// loadSnapshot returns nil when no usable snapshot exists
func (p *Pipeline) loadSnapshot(root string) *snapshot.Snapshot {
	path := p.SnapshotPath(root)
	if path == "" {
		return nil
	}
	snap, err := snapshot.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		p.logger.Info("no snapshot found", "path", path)
		return nil
	case err != nil:
		p.logger.Warn("snapshot unusable", "path", path, "error", err)
		return nil
	}
	for _, entry := range snap.Skipped {
		p.logger.Debug("snapshot entry skipped", "path", path, "entry", entry)
	}
	p.logger.Debug("snapshot loaded", "path", path, "files", len(snap.Files), "skipped", len(snap.Skipped), "truncated", snap.Truncated)
	return snap
}

func evaluated(result model.EvidenceResult) int {
	n := 0
	for _, r := range result.Records {
		if r.Evaluated() {
			n++
		}
	}
	return n
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose && jsonPath != "-" {
			fmt.Fprintf(p.renderer.out, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if jsonPath != "-" {
		p.renderer.RenderSummary(report)
	}
	return nil
}
