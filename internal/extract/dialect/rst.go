package dialect

import (
	"regexp"
	"strings"
)

var (
	rstSectionUnderline = regexp.MustCompile(`^(={3,}|-{3,}|~{3,}|\^{3,}|\+{3,}|#{3,}|\*{3,}|_{3,}|"{3,}|'{3,}|` + "`" + `{3,})$`)
	rstDirective        = regexp.MustCompile(`^\.\.\s+([A-Za-z0-9_-]+)::\s*(.*)$`)
	rstComment          = regexp.MustCompile(`^\.\.(\s|$)`)
	rstFieldList        = regexp.MustCompile(`^:([^:]+):\s*(.*)$`)
	rstEnumerated       = regexp.MustCompile(`^(\s*)(#|\d+|[a-z])[.)]\s+(.*)$`)
)

// Admonition directives whose body is prose
var rstAdmonitions = map[string]bool{
	"note": true, "tip": true, "hint": true, "important": true,
	"warning": true, "caution": true, "danger": true, "attention": true,
}

// RST rewrites reStructuredText headings, blocks and directives into Markdown form
type RST struct{}

// NewRST creates the reStructuredText dialect
func NewRST() *RST {
	return &RST{}
}

// Name returns the dialect name
func (r *RST) Name() string {
	return "rst"
}

// CanHandle reports reStructuredText extensions
func (r *RST) CanHandle(docPath string) bool {
	return hasExt(docPath, ".rst", ".rest")
}

// rstState tracks heading levels and skipped indented blocks
type rstState struct {
	underlineToLevel map[byte]int
	nextLevel        int

	// Lines indented deeper than skipIndent belong to a code block or directive body
	skipping   bool
	skipIndent int
}

// Convert rewrites content, keeping one output line per input line. Code
// blocks and directive bodies are blanked instead of fenced so the line
// mapping survives.
func (r *RST) Convert(content string) Source {
	in := strings.Split(content, "\n")
	out := make([]string, len(in))
	state := &rstState{underlineToLevel: make(map[byte]int), nextLevel: 1}

	for i := 0; i < len(in); i++ {
		line := in[i]
		trimmed := strings.TrimSpace(line)

		if state.skipping {
			if trimmed == "" || indentOf(line) > state.skipIndent {
				continue
			}
			state.skipping = false
		}

		// Overline + title + underline
		if rstSectionUnderline.MatchString(trimmed) && i+2 < len(in) &&
			strings.TrimSpace(in[i+2]) == trimmed && strings.TrimSpace(in[i+1]) != "" {
			out[i+1] = state.heading(trimmed[0], strings.TrimSpace(in[i+1]))
			i += 2
			continue
		}

		// Title + underline
		if trimmed != "" && i+1 < len(in) && !rstSectionUnderline.MatchString(trimmed) {
			under := strings.TrimSpace(in[i+1])
			if rstSectionUnderline.MatchString(under) && len(under) >= len(trimmed) && indentOf(line) == 0 {
				out[i] = state.heading(under[0], trimmed)
				i++
				continue
			}
		}

		if m := rstDirective.FindStringSubmatch(trimmed); m != nil {
			name := strings.ToLower(m[1])
			if rstAdmonitions[name] {
				out[i] = "**" + strings.ToUpper(name[:1]) + name[1:] + ":** " + m[2]
				continue
			}
			state.skip(indentOf(line))
			continue
		}

		if rstComment.MatchString(trimmed) {
			state.skip(indentOf(line))
			continue
		}

		if m := rstFieldList.FindStringSubmatch(trimmed); m != nil && indentOf(line) == 0 {
			out[i] = "**" + m[1] + ":** " + m[2]
			continue
		}

		if m := rstEnumerated.FindStringSubmatch(line); m != nil {
			out[i] = m[1] + "1. " + m[3]
			continue
		}

		if strings.HasSuffix(trimmed, "::") {
			// Literal block follows; keep the lead-in text
			text := strings.TrimSpace(strings.TrimSuffix(trimmed, "::"))
			if text != "" {
				out[i] = line[:indentOf(line)] + text + ":"
			}
			state.skip(indentOf(line))
			continue
		}

		out[i] = line
	}

	return Source{Dialect: r.Name(), Lines: out}
}

// heading maps an underline character to a level in first-seen order
func (s *rstState) heading(c byte, title string) string {
	level, ok := s.underlineToLevel[c]
	if !ok {
		level = s.nextLevel
		s.underlineToLevel[c] = level
		if s.nextLevel < 6 {
			s.nextLevel++
		}
	}
	return strings.Repeat("#", level) + " " + title
}

func (s *rstState) skip(indent int) {
	s.skipping = true
	s.skipIndent = indent
}
