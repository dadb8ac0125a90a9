package extract

import (
	"regexp"
	"strings"
)

// lineKind is the structural role of a logical line
type lineKind int

const (
	kindBlank lineKind = iota
	kindHeading
	kindList
	kindTable
	kindParagraph
	kindRule
)

// logicalLine is one or more physical lines merged for rule evaluation
type logicalLine struct {
	Kind   lineKind
	Text   string // trimmed text, list/quote markers kept for list items only
	Line   int    // first physical line (1-based)
	Indent int
	Quote  bool
	Header bool // table row followed by a separator row
	Level  int  // heading level
}

var (
	headingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	listItemPattern  = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+(\[( |x|X)\]\s+)?(.*)$`)
	tableSepPattern  = regexp.MustCompile(`^\|?\s*:?-{2,}:?\s*(\|\s*:?-{2,}:?\s*)*\|?$`)
	setextH1Pattern  = regexp.MustCompile(`^=+\s*$`)
	setextH2Pattern  = regexp.MustCompile(`^-{2,}\s*$`)
	rulePattern      = regexp.MustCompile(`^([-*_])(\s*[-*_]){2,}\s*$`)
	quotePrefixRegex = regexp.MustCompile(`^\s*(>\s?)+`)
)

// assembleLines folds the physical lines into logical lines: fenced blocks
// are dropped, quote blocks merged, setext headings folded and soft-wrapped
// paragraphs joined.
func assembleLines(lines []string) []logicalLine {
	var out []logicalLine
	fence := ""

	emit := func(ll logicalLine) { out = append(out, ll) }
	last := func() *logicalLine {
		if len(out) == 0 {
			return nil
		}
		return &out[len(out)-1]
	}

	for i := 0; i < len(lines); i++ {
		raw := strings.TrimRight(lines[i], " \t")
		trimmed := strings.TrimSpace(raw)
		lineNo := i + 1

		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if marker := fenceOpener(trimmed); marker != "" {
			fence = marker
			emit(logicalLine{Kind: kindBlank, Line: lineNo})
			continue
		}

		if trimmed == "" {
			emit(logicalLine{Kind: kindBlank, Line: lineNo})
			continue
		}

		if m := headingPattern.FindStringSubmatch(trimmed); m != nil && indentOf(raw) < 4 {
			emit(logicalLine{Kind: kindHeading, Text: m[2], Line: lineNo, Level: len(m[1])})
			continue
		}

		if quotePrefixRegex.MatchString(raw) {
			text := strings.TrimSpace(quotePrefixRegex.ReplaceAllString(raw, ""))
			if prev := last(); prev != nil && prev.Quote && text != "" {
				prev.Text = joinWrapped(prev.Text, text)
				continue
			}
			if text == "" {
				emit(logicalLine{Kind: kindBlank, Line: lineNo})
				continue
			}
			emit(logicalLine{Kind: kindParagraph, Text: text, Line: lineNo, Quote: true})
			continue
		}

		if listItemPattern.MatchString(raw) && !rulePattern.MatchString(trimmed) {
			emit(logicalLine{Kind: kindList, Text: raw, Line: lineNo, Indent: indentOf(raw)})
			continue
		}

		if strings.HasPrefix(trimmed, "|") || strings.Count(trimmed, "|") >= 2 {
			if tableSepPattern.MatchString(trimmed) {
				if prev := last(); prev != nil && prev.Kind == kindTable {
					prev.Header = true
				}
				continue
			}
			emit(logicalLine{Kind: kindTable, Text: trimmed, Line: lineNo})
			continue
		}

		// Setext heading: text line followed by === or ---
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if setextH1Pattern.MatchString(next) || setextH2Pattern.MatchString(next) {
				if prev := last(); prev == nil || prev.Kind != kindParagraph || prev.Quote {
					level := 1
					if strings.HasPrefix(next, "-") {
						level = 2
					}
					emit(logicalLine{Kind: kindHeading, Text: trimmed, Line: lineNo, Level: level})
					i++
					continue
				}
			}
		}

		if rulePattern.MatchString(trimmed) {
			emit(logicalLine{Kind: kindRule, Line: lineNo})
			continue
		}

		// Continuation of the previous paragraph or an indented list item body
		if prev := last(); prev != nil && !prev.Quote && !boldLabelPattern.MatchString(trimmed) {
			switch {
			case prev.Kind == kindParagraph && !endsSentence(prev.Text):
				prev.Text = joinWrapped(prev.Text, trimmed)
				continue
			case prev.Kind == kindList && indentOf(raw) > prev.Indent && !endsSentence(prev.Text):
				prev.Text = joinWrapped(prev.Text, trimmed)
				continue
			}
		}

		emit(logicalLine{Kind: kindParagraph, Text: trimmed, Line: lineNo, Indent: indentOf(raw)})
	}
	return out
}

func fenceOpener(trimmed string) string {
	for _, f := range []string{"```", "~~~", ":::"} {
		if strings.HasPrefix(trimmed, f) {
			return f
		}
	}
	return ""
}

func endsSentence(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

func joinWrapped(a, b string) string {
	if strings.HasSuffix(a, "-") && !strings.HasSuffix(a, " -") {
		return a + b
	}
	return a + " " + b
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}
