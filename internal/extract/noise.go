package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/driftscan/internal/lexicon"
	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/normalize"
)

// filterInput is what a noise filter sees
type filterInput struct {
	cand   Candidate
	lower  string
	words  []string
	tokens normalize.TokenSet
	kind   DocKind
	limits model.Limits
}

// noiseFilter rejects a candidate; filters run in order and the first rejection wins
type noiseFilter struct {
	name   string
	reject func(in filterInput) bool
}

var noiseFilters = []noiseFilter{
	{"too-short", func(in filterInput) bool {
		return utf8.RuneCountInString(in.cand.Text) < in.limits.MinLength
	}},
	{"generic-label", func(in filterInput) bool {
		if lexicon.IsNonFeatureLabel(in.cand.Text) {
			return true
		}
		return len(in.words) <= 2 && len(in.tokens.Tokens) > 0 && !in.tokens.HasNonGeneric
	}},
	{"low-signal", func(in filterInput) bool {
		if lexicon.IsNoiseExact(in.lower) || lexicon.MatchesNoisePattern(in.lower) {
			return true
		}
		if _, ok := lexicon.NoisePrefix(in.lower); ok {
			return true
		}
		_, ok := lexicon.NoiseSubstring(in.lower)
		return ok
	}},
	{"instructional", func(in filterInput) bool {
		c := in.cand
		if c.FeatureContext || c.Checkbox != model.CheckboxNone || c.Plan != nil || len(in.words) == 0 {
			return false
		}
		first := strings.Trim(strings.ToLower(in.words[0]), ",.:;!")
		return first == "please" || lexicon.IsInstructionalVerb(first)
	}},
	{"env-var", func(in filterInput) bool {
		return lexicon.IsEnvVarListing(in.cand.Text)
	}},
	{"single-token", func(in filterInput) bool {
		if len(in.tokens.Tokens) != 1 || in.kind == KindFeatures || in.kind == KindManifest {
			return false
		}
		tok := in.tokens.Tokens[0]
		return !lexicon.IsAcronym(tok) && !lexicon.IsAcronym(in.tokens.NormalizedText)
	}},
	{"empty-tokens", func(in filterInput) bool {
		return len(in.tokens.Tokens) == 0
	}},
}

// rejectNoise returns the first filter rejecting the candidate
func rejectNoise(c Candidate, kind DocKind, limits model.Limits) (string, bool) {
	in := filterInput{
		cand:   c,
		lower:  strings.ToLower(c.Text),
		words:  strings.Fields(c.Text),
		tokens: normalize.Normalize(c.Text),
		kind:   kind,
		limits: limits,
	}
	for _, f := range noiseFilters {
		if f.reject(in) {
			return f.name, true
		}
	}
	return "", false
}

// Natural break points, preferred in this order when trimming long text
var clampBoundaries = []string{". ", "; ", " (", ": ", " - ", " — ", " – ", ", "}

// clampText trims text longer than maxLen at the last natural boundary that
// keeps at least minLen characters, falling back to the last word break.
func clampText(text string, minLen, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	head := string(runes[:maxLen])

	for _, b := range clampBoundaries {
		if idx := strings.LastIndex(head, b); idx > 0 && utf8.RuneCountInString(head[:idx]) >= minLen {
			return trimDecorations(head[:idx])
		}
	}
	if idx := strings.LastIndex(head, " "); idx > 0 && utf8.RuneCountInString(head[:idx]) >= minLen {
		return trimDecorations(head[:idx])
	}
	return trimDecorations(head)
}
