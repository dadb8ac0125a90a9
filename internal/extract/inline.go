package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/driftscan/internal/lexicon"
	"golang.org/x/net/html"
)

var (
	imagePattern     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkPattern      = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	refLinkPattern   = regexp.MustCompile(`\[([^\]]+)\]\[[^\]]*\]`)
	autoLinkPattern  = regexp.MustCompile(`<((?:https?|mailto):[^>]+)>`)
	codeSpanPattern  = regexp.MustCompile("`([^`]*)`")
	emphasisPattern  = regexp.MustCompile(`(^|[\s(])[*_]([^*_\s][^*_]*?)[*_]($|[\s.,;:!?)])`)
	footnotePattern  = regexp.MustCompile(`\[\^[^\]]+\]`)
	descriptiveRegex = regexp.MustCompile(`(?i)^(.{1,60}?)\s+is\s+(?:a|an)\s+(.+)$`)
)

// cleanInline reduces Markdown inline markup to plain text
func cleanInline(s string) string {
	s = imagePattern.ReplaceAllString(s, "$1")
	s = linkPattern.ReplaceAllString(s, "$1")
	s = refLinkPattern.ReplaceAllString(s, "$1")
	s = autoLinkPattern.ReplaceAllString(s, "$1")
	s = footnotePattern.ReplaceAllString(s, "")
	s = codeSpanPattern.ReplaceAllString(s, "$1")
	s = strings.NewReplacer("**", "", "__", "", "~~", "").Replace(s)
	s = emphasisPattern.ReplaceAllString(s, "$1$2$3")
	s = html.UnescapeString(s)

	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.So, r) || unicode.Is(unicode.Sk, r) || r == 0xFE0F || r == 0x200D {
			continue
		}
		b.WriteRune(r)
	}
	s = strings.Join(strings.Fields(b.String()), " ")
	return trimDecorations(s)
}

// trimDecorations strips leading bullets and trailing separators. A leading
// "--" is kept so flags survive.
func trimDecorations(s string) string {
	s = strings.TrimLeft(s, " *+•·>|")
	s = strings.TrimPrefix(s, "- ")
	s = strings.TrimRight(s, " :;,-–—|")
	return strings.TrimSpace(s)
}

// splitSentences splits prose on terminal punctuation followed by an
// uppercase letter or digit, ignoring common abbreviations.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+2 >= len(runes) || runes[i+1] != ' ' {
			continue
		}
		next := runes[i+2]
		if !unicode.IsUpper(next) && !unicode.IsDigit(next) {
			continue
		}
		if r == '.' && endsWithAbbreviation(string(runes[start:i+1])) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 2
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

var abbreviations = []string{"e.g.", "i.e.", "etc.", "vs.", "approx.", "incl.", "dr.", "mr.", "no."}

func endsWithAbbreviation(s string) bool {
	lower := strings.ToLower(s)
	for _, a := range abbreviations {
		if strings.HasSuffix(lower, a) {
			return true
		}
	}
	return false
}

// Words that start a sub-clause rather than another list entry
var subClauseStarters = map[string]bool{
	"which": true, "that": true, "who": true, "where": true, "when": true,
	"so": true, "but": true, "because": true, "including": true, "e.g.": true,
	"i.e.": true, "such": true, "while": true, "although": true, "if": true,
	"then": true, "as": true, "like": true, "unless": true, "since": true,
}

const (
	maxSplitPartWords  = 4
	maxSplitTotalWords = 24
)

// splitFeatureList splits "OAuth, SAML and LDAP" into its items. It returns
// nil when the text does not look like a plain enumeration.
func splitFeatureList(text string) []string {
	if !strings.Contains(text, ",") {
		return nil
	}
	if len(strings.Fields(text)) > maxSplitTotalWords {
		return nil
	}

	raw := strings.Split(strings.TrimRight(text, "."), ",")
	var parts []string
	for i, p := range raw {
		p = strings.TrimSpace(p)
		if i == len(raw)-1 {
			for _, conj := range []string{"and ", "or ", "& "} {
				p = strings.TrimPrefix(p, conj)
			}
			// "X, Y and Z": the last comma-free chunk may still hold two items
			if idx := strings.Index(p, " and "); idx > 0 && len(raw) > 1 {
				parts = append(parts, strings.TrimSpace(p[:idx]))
				p = strings.TrimSpace(p[idx+5:])
			}
		}
		if p == "" || strings.EqualFold(p, "etc") || strings.EqualFold(p, "etc.") {
			continue
		}
		parts = append(parts, p)
	}
	if len(parts) < 2 {
		return nil
	}

	for _, p := range parts {
		words := strings.Fields(p)
		if len(words) == 0 || len(words) > maxSplitPartWords {
			return nil
		}
		if subClauseStarters[strings.ToLower(words[0])] {
			return nil
		}
		if strings.ContainsAny(p, ".;:") {
			return nil
		}
	}
	return parts
}

// Phrases that end a verb object
var objectStops = []string{
	". ", ";", ":", " so that ", " which ", " because ", " without ", " when ",
	" if ", " — ", " – ", " - ", " out of the box", " as well",
}

// Leading filler in a verb object
var objectFillers = []string{
	"a ", "an ", "the ", "full ", "native ", "built-in ", "first-class ",
	"support for ", "the ability to ", "ability to ", "you to ",
}

// verbObject finds the first inline feature verb in a sentence and returns the
// object phrase that follows it.
func verbObject(sentence string) (object, verb string, ok bool) {
	lower := strings.ToLower(sentence)
	if len(lower) != len(sentence) {
		sentence = lower
	}
	best := -1
	for _, v := range lexicon.InlineFeatureVerbs() {
		idx := indexWord(lower, v)
		if idx < 0 || (best >= 0 && idx >= best) {
			continue
		}
		best, verb = idx, v
	}
	if best < 0 {
		return "", "", false
	}

	before := lower[:best]
	for _, neg := range []string{"not ", "n't ", "never ", "no longer "} {
		if strings.HasSuffix(before, neg) {
			return "", "", false
		}
	}

	object = sentence[best+len(verb):]
	lowerObj := strings.ToLower(object)
	cut := len(object)
	for _, stop := range objectStops {
		if idx := strings.Index(lowerObj, stop); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	object = strings.TrimSpace(object[:cut])
	object = strings.TrimRight(object, ".!?")
	for changed := true; changed; {
		changed = false
		for _, f := range objectFillers {
			if len(object) > len(f) && strings.EqualFold(object[:len(f)], f) {
				object = strings.TrimSpace(object[len(f):])
				changed = true
			}
		}
	}
	if object == "" {
		return "", "", false
	}
	return object, verb, true
}

// indexWord finds phrase in s at word boundaries
func indexWord(s, phrase string) int {
	from := 0
	for {
		idx := strings.Index(s[from:], phrase)
		if idx < 0 {
			return -1
		}
		idx += from
		end := idx + len(phrase)
		if (idx == 0 || !isWordByte(s[idx-1])) && (end == len(s) || !isWordByte(s[end])) {
			return idx
		}
		from = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// Words that end the noun phrase of a descriptive sentence
var descriptiveStops = map[string]bool{
	"that": true, "which": true, "for": true, "to": true, "with": true,
	"written": true, "built": true, "designed": true, "powered": true,
	"using": true, "in": true, "on": true, "from": true, "who": true,
	"of": true, "based": true,
}

// descriptivePhrase handles "X is a <adj> <noun>" sentences. It returns the
// noun phrase with marketing adjectives removed, or false when what remains
// only describes the product generically ("a lightweight library").
func descriptivePhrase(sentence string) (string, bool) {
	m := descriptiveRegex.FindStringSubmatch(strings.TrimRight(sentence, ".!"))
	if m == nil {
		return "", false
	}
	subject := strings.ToLower(strings.TrimSpace(m[1]))

	var kept []string
	for _, w := range strings.Fields(m[2]) {
		clean := strings.Trim(w, ",;()\"'")
		lw := strings.ToLower(clean)
		if descriptiveStops[lw] {
			break
		}
		if clean == "" || lexicon.IsMarketingAdjective(lw) || lexicon.IsStopword(lw) {
			continue
		}
		kept = append(kept, clean)
	}
	if len(kept) == 0 {
		return "", false
	}

	generic := true
	for _, w := range kept {
		lw := strings.ToLower(w)
		if !lexicon.IsProductNoun(lw) && lw != subject && !strings.HasSuffix(lw, "-based") {
			generic = false
			break
		}
	}
	if generic {
		return "", false
	}
	return strings.Join(kept, " "), true
}
