// Package extract mines documentation for candidate feature claims.
package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/driftscan/internal/cache"
	"github.com/ppiankov/driftscan/internal/extract/dialect"
	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/normalize"
)

// Candidate is a claim before normalization
type Candidate struct {
	Text      string               `json:"text"`
	Line      int                  `json:"line"`
	Section   string               `json:"section,omitempty"`
	Category  model.SourceCategory `json:"category"`
	Checkbox  model.CheckboxState  `json:"checkbox,omitempty"`
	Plan      *model.PlanMetadata  `json:"plan,omitempty"`
	Heuristic string               `json:"heuristic"`

	// FeatureContext marks text from an explicit feature list, exempt from the instructional filter
	FeatureContext bool `json:"feature_context,omitempty"`
}

// Extractor turns documents into feature claims
type Extractor struct {
	limits   model.Limits
	dialects *dialect.Registry
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithCache stores per-document candidates in c, keyed by content hash and limits
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(e *Extractor) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates a new extractor
func NewExtractor(limits model.Limits, opts ...Option) *Extractor {
	e := &Extractor{
		limits:   limits.Normalize(),
		dialects: dialect.NewRegistry(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractDocument returns the accepted candidates of one document, in
// document order, deduplicated and capped at MaxPerFile.
func (e *Extractor) ExtractDocument(doc model.Document) []Candidate {
	if !utf8.ValidString(doc.Content) {
		doc.Content = strings.ToValidUTF8(doc.Content, " ")
	}
	if int64(len(doc.Content)) > e.limits.MaxDocumentBytes {
		doc.Content = doc.Content[:e.limits.MaxDocumentBytes]
		doc.Content = strings.ToValidUTF8(doc.Content, "")
	}

	var key string
	if e.cache != nil {
		key = e.cacheKey(doc)
		var cached []Candidate
		if cache.GetJSON(e.cache, key, &cached) {
			return cached
		}
	}

	out := e.extract(doc)

	if e.cache != nil {
		if err := cache.SetJSON(e.cache, key, out, e.cacheTTL); err != nil {
			e.logger.Debug("candidate cache write failed", "path", doc.Path, "error", err)
		}
	}
	return out
}

func (e *Extractor) extract(doc model.Document) []Candidate {
	profile := ProfileFor(doc.Path)

	s := newScanner(profile)
	if profile.Kind == KindManifest {
		for _, c := range manifestCandidates(profile, doc.Content) {
			s.emit(c)
		}
	} else {
		src := e.dialects.Convert(doc.Path, doc.Content)
		for _, item := range src.Features {
			s.emit(Candidate{Text: cleanInline(item.Text), Line: item.Line, Heuristic: "frontmatter", FeatureContext: true})
		}
		s.scan(assembleLines(src.Lines))
		s.pathClaim()
	}
	seen := make(map[string]bool)
	var out []Candidate
	for _, c := range s.out {
		c.Text = clampText(c.Text, e.limits.MinLength, e.limits.MaxLength)
		if rule, rejected := rejectNoise(c, profile.Kind, e.limits); rejected {
			e.logger.Debug("candidate rejected", "path", doc.Path, "line", c.Line, "rule", rule, "text", c.Text)
			continue
		}
		norm := normalize.Text(c.Text)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, c)
		if len(out) >= e.limits.MaxPerFile {
			break
		}
	}
	return out
}

func (e *Extractor) cacheKey(doc model.Document) string {
	sum := sha256.Sum256([]byte(doc.Content))
	l := e.limits
	opts := fmt.Sprintf("%d/%d/%d/%d", l.MaxPerFile, l.MinLength, l.MaxLength, l.MaxDocumentBytes)
	return cache.Key("candidates", doc.Path, hex.EncodeToString(sum[:]), opts)
}

// Extract runs ExtractDocument over a batch and returns normalized claims.
// Claims with no tokens are dropped, duplicates across the batch keep the
// first occurrence and the result is capped at MaxTotal.
func (e *Extractor) Extract(docs []model.Document) []model.FeatureClaim {
	seen := make(map[string]bool)
	var claims []model.FeatureClaim
	for _, doc := range docs {
		for _, c := range e.ExtractDocument(doc) {
			claim, ok := e.claimFrom(doc.Path, c)
			if !ok || seen[claim.NormalizedText] {
				continue
			}
			seen[claim.NormalizedText] = true
			claims = append(claims, claim)
			if len(claims) >= e.limits.MaxTotal {
				return claims
			}
		}
	}
	return claims
}

func (e *Extractor) claimFrom(path string, c Candidate) (model.FeatureClaim, bool) {
	ts := normalize.Normalize(c.Text)
	if len(ts.Tokens) == 0 {
		return model.FeatureClaim{}, false
	}
	return model.FeatureClaim{
		RawText:          c.Text,
		NormalizedText:   ts.NormalizedText,
		Tokens:           ts.Tokens,
		Terms:            ts.Terms,
		SourceFile:       path,
		SourceLine:       c.Line,
		SourceCategory:   c.Category,
		Section:          c.Section,
		Checkbox:         c.Checkbox,
		Plan:             c.Plan,
		ConfidenceWeight: c.Category.Weight(),
		HasNonGeneric:    ts.HasNonGeneric,
		NonGeneric:       ts.NonGeneric,
		Heuristic:        c.Heuristic,
	}, true
}
