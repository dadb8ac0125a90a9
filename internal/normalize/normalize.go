// Package normalize turns claim text and code identifiers into comparable
// canonical roots.
package normalize

import (
	"strings"
	"unicode"

	"github.com/ppiankov/driftscan/internal/lexicon"
)

// TokenSet is the comparable form of a piece of text
type TokenSet struct {
	NormalizedText string
	Tokens         []string // ordered distinct canonical roots
	Terms          []string // every alias variant of every root
	NonGeneric     int
	HasNonGeneric  bool
}

// Text lowercases s, replaces everything outside letters, digits, space,
// slash and hyphen with a space, and collapses whitespace.
func Text(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '/', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits normalized text into content words, dropping stopwords and
// tokens shorter than three letters unless allow-listed.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(Text(s), func(r rune) bool {
		return r == ' ' || r == '/' || r == '-'
	})
	var out []string
	for _, f := range fields {
		if lexicon.IsStopword(f) {
			continue
		}
		if len([]rune(f)) < 3 && !lexicon.IsShortToken(f) {
			continue
		}
		if isDigits(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Canonical returns the alias root of the singular form of w
func Canonical(w string) string {
	return lexicon.AliasRoot(Singular(strings.ToLower(w)))
}

// Variants returns every spelling in root's alias group
func Variants(root string) []string {
	return lexicon.AliasGroup(root)
}

// IsGeneric reports whether a word or its root belongs to the generic vocabulary
func IsGeneric(w string) bool {
	return lexicon.IsGenericToken(w) || lexicon.IsGenericToken(Canonical(w))
}

// Normalize maps arbitrary text to its token set
func Normalize(s string) TokenSet {
	ts := TokenSet{NormalizedText: Text(s)}
	seen := make(map[string]bool)
	for _, tok := range Tokenize(ts.NormalizedText) {
		root := Canonical(tok)
		if root == "" || seen[root] {
			continue
		}
		seen[root] = true
		ts.Tokens = append(ts.Tokens, root)
		if !IsGeneric(tok) && !lexicon.IsGenericToken(root) {
			ts.NonGeneric++
		}
	}
	ts.HasNonGeneric = ts.NonGeneric > 0

	termSeen := make(map[string]bool)
	for _, root := range ts.Tokens {
		for _, v := range Variants(root) {
			if !termSeen[v] {
				termSeen[v] = true
				ts.Terms = append(ts.Terms, v)
			}
		}
	}
	return ts
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
