package normalize

import (
	"strings"
	"unicode"

	"github.com/ppiankov/driftscan/internal/lexicon"
)

// Words splits an identifier or path into lowercase singular words.
// "parseHTTPHeaders" -> [parse http header], "rate_limit.go" -> [rate limit go].
// Letter/digit runs are kept together when the joined form is an allow-listed
// token, so "oauth2Client" yields [oauth2 client].
func Words(identifier string) []string {
	var out []string
	for _, chunk := range strings.FieldsFunc(identifier, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		for _, seg := range mergeAllowListed(splitCase(chunk)) {
			seg = strings.ToLower(seg)
			if seg == "" || isDigits(seg) {
				continue
			}
			out = append(out, Singular(seg))
		}
	}
	return out
}

// NameRoots returns the canonical roots of an identifier's words plus the
// joins of adjacent words, so "rateLimit" also yields "ratelimit".
func NameRoots(identifier string) []string {
	words := Words(identifier)
	seen := make(map[string]bool)
	var out []string
	add := func(w string) {
		r := lexicon.AliasRoot(w)
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	for _, w := range words {
		add(w)
	}
	for i := 0; i+1 < len(words); i++ {
		add(Singular(words[i] + words[i+1]))
	}
	return out
}

// splitCase splits a single alphanumeric chunk at case and digit boundaries
func splitCase(s string) []string {
	runes := []rune(s)
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		split := false
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			split = true
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			split = true
		case unicode.IsLetter(prev) && unicode.IsDigit(cur), unicode.IsDigit(prev) && unicode.IsLetter(cur):
			split = true
		}
		if split {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	return append(parts, string(runes[start:]))
}

// mergeAllowListed re-joins digit splits such as "s"+"3" or "k"+"8"+"s"
func mergeAllowListed(parts []string) []string {
	var out []string
	for i := 0; i < len(parts); i++ {
		if i+2 < len(parts) {
			joined := strings.ToLower(parts[i] + parts[i+1] + parts[i+2])
			if allowListed(joined) {
				out = append(out, joined)
				i += 2
				continue
			}
		}
		if i+1 < len(parts) {
			joined := strings.ToLower(parts[i] + parts[i+1])
			if allowListed(joined) {
				out = append(out, joined)
				i++
				continue
			}
		}
		out = append(out, parts[i])
	}
	return out
}

func allowListed(w string) bool {
	return lexicon.IsAcronym(w) || lexicon.IsShortToken(w)
}
