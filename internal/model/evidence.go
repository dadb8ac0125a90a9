package model

// EvidenceStatus is the evidence-derived classification of a claim
type EvidenceStatus string

const (
	StatusImplemented EvidenceStatus = "implemented"
	StatusPartial     EvidenceStatus = "partial"
	StatusMissing     EvidenceStatus = "missing"
)

// EvidenceRecord holds the evidence gathered for one claim
type EvidenceRecord struct {
	Claim      string         `json:"claim"`
	SourceFile string         `json:"source_file"`
	SourceLine int            `json:"source_line"`
	Status     EvidenceStatus `json:"status"`
	Reason     string         `json:"reason"` // e.g. "symbol_used", "file_fallback", "no_match"

	Definitions     []Definition     `json:"definitions"`
	UsageReferences []UsageReference `json:"usage_references"`
	Fallback        []Match          `json:"fallback,omitempty"` // file and flag matches
	Snippets        []Snippet        `json:"snippets"`
}

// ReasonNotEvaluated marks records of claims skipped by cancellation
const ReasonNotEvaluated = "not_evaluated"

// Evaluated reports whether the record holds a real verdict rather than a
// placeholder left by a cancelled run
func (r EvidenceRecord) Evaluated() bool {
	return r.Reason != ReasonNotEvaluated
}

// TestOnly reports whether every definition backing the record lives in test code
func (r EvidenceRecord) TestOnly() bool {
	if len(r.Definitions) == 0 {
		return false
	}
	for _, d := range r.Definitions {
		if !d.TestOnly {
			return false
		}
	}
	return true
}

// Definition is a symbol that matched a claim
type Definition struct {
	File     string `json:"file"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Line     int    `json:"line"`
	Exported bool   `json:"exported"`
	TestOnly bool   `json:"test_only"`
	Score    int    `json:"score"`
	Used     bool   `json:"used"`
}

// UsageReference counts identifier occurrences of a definition in another file
type UsageReference struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

// Snippet is a short window of source lines shown to reviewers
type Snippet struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// MatchKind classifies the type of evidence
type MatchKind string

const (
	MatchSymbol MatchKind = "symbol" // Symbol definition in the repo map
	MatchFile   MatchKind = "file"   // File path token match
	MatchFlag   MatchKind = "flag"   // Literal CLI flag occurrence
)

// Match is a tagged variant: exactly one of Symbol, File or Flag is set, per Kind
type Match struct {
	Kind   MatchKind   `json:"kind"`
	Symbol *Definition `json:"symbol,omitempty"`
	File   *FileMatch  `json:"file,omitempty"`
	Flag   *FlagMatch  `json:"flag,omitempty"`
}

// FileMatch is a file whose path matched claim tokens
type FileMatch struct {
	Path    string   `json:"path"`
	Matched []string `json:"matched"` // canonical roots found in the path
}

// FlagMatch is a literal flag occurrence in a source file
type FlagMatch struct {
	Flag string `json:"flag"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// NewFileMatch wraps a file match in the tagged variant
func NewFileMatch(path string, matched []string) Match {
	return Match{Kind: MatchFile, File: &FileMatch{Path: path, Matched: matched}}
}

// NewFlagMatch wraps a flag match in the tagged variant
func NewFlagMatch(flag, file string, line int) Match {
	return Match{Kind: MatchFlag, Flag: &FlagMatch{Flag: flag, File: file, Line: line}}
}

// NewSymbolMatch wraps a definition in the tagged variant
func NewSymbolMatch(def Definition) Match {
	d := def
	return Match{Kind: MatchSymbol, Symbol: &d}
}

// EvidenceResult is the matcher output for a batch of claims
type EvidenceResult struct {
	Available bool             `json:"available"`
	Reason    string           `json:"reason,omitempty"` // Set when unavailable
	Records   []EvidenceRecord `json:"records"`
}
