package dialect

import (
	"regexp"
	"strings"
)

var (
	adocSectionTitle = regexp.MustCompile(`^(={1,6})\s+(.+)$`)
	adocAttribute    = regexp.MustCompile(`^:!?[A-Za-z0-9_][A-Za-z0-9_-]*!?:(\s.*)?$`)
	adocSourceBlock  = regexp.MustCompile(`^\[(source|listing|literal)(,[^\]]*)?\]$`)
	adocBlockAttr    = regexp.MustCompile(`^\[[^\]]*\]$`)
	adocBlockTitle   = regexp.MustCompile(`^\.[A-Za-z][^.].*$`)
	adocAdmonition   = regexp.MustCompile(`^(NOTE|TIP|IMPORTANT|WARNING|CAUTION):\s*(.*)$`)
	adocListItem     = regexp.MustCompile(`^(\*{1,5}|\.{1,5}|-)\s+(.*)$`)
	adocBlockMacro   = regexp.MustCompile(`^[a-z]+::[^\[]*\[[^\]]*\]$`)
)

// AsciiDoc rewrites AsciiDoc headings, blocks and lists into Markdown form
type AsciiDoc struct{}

// NewAsciiDoc creates the AsciiDoc dialect
func NewAsciiDoc() *AsciiDoc {
	return &AsciiDoc{}
}

// Name returns the dialect name
func (a *AsciiDoc) Name() string {
	return "asciidoc"
}

// CanHandle reports AsciiDoc extensions
func (a *AsciiDoc) CanHandle(docPath string) bool {
	return hasExt(docPath, ".adoc", ".asciidoc", ".asc")
}

// adocBlock tracks an open delimited block
type adocBlock struct {
	delim   string
	code    bool // rendered as a fence
	comment bool // dropped entirely
}

// Convert rewrites content line by line, keeping one output line per input line
func (a *AsciiDoc) Convert(content string) Source {
	in := strings.Split(content, "\n")
	out := make([]string, len(in))
	var block *adocBlock

	for i, line := range in {
		trimmed := strings.TrimSpace(line)

		if block != nil {
			switch {
			case trimmed == block.delim:
				if block.code {
					out[i] = "```"
				}
				block = nil
			case block.comment:
			default:
				out[i] = line
			}
			continue
		}

		switch {
		case trimmed == "////":
			block = &adocBlock{delim: trimmed, comment: true}
		case trimmed == "----", trimmed == "....", trimmed == "++++":
			block = &adocBlock{delim: trimmed, code: true}
			out[i] = "```"
		case strings.HasPrefix(trimmed, "//"):
			// line comment
		case adocAttribute.MatchString(trimmed):
		case adocSourceBlock.MatchString(trimmed), adocBlockAttr.MatchString(trimmed):
		case isAdocDelimiter(trimmed):
			// sidebar, example and quote delimiters carry no text
		case adocBlockMacro.MatchString(trimmed):
		default:
			out[i] = convertAdocLine(line, trimmed)
		}
	}

	return Source{Dialect: a.Name(), Lines: out}
}

func convertAdocLine(line, trimmed string) string {
	if m := adocSectionTitle.FindStringSubmatch(trimmed); m != nil {
		return strings.Repeat("#", len(m[1])) + " " + m[2]
	}
	if m := adocAdmonition.FindStringSubmatch(trimmed); m != nil {
		return "**" + m[1] + ":** " + m[2]
	}
	if m := adocListItem.FindStringSubmatch(trimmed); m != nil {
		depth := len(m[1])
		if m[1] == "-" {
			depth = 1
		}
		marker := "-"
		if strings.HasPrefix(m[1], ".") {
			marker = "1."
		}
		return strings.Repeat("  ", depth-1) + marker + " " + m[2]
	}
	if adocBlockTitle.MatchString(trimmed) {
		return "**" + strings.TrimPrefix(trimmed, ".") + "**"
	}
	// Hard line breaks
	return strings.TrimSuffix(line, " +")
}

func isAdocDelimiter(trimmed string) bool {
	if len(trimmed) < 4 {
		return false
	}
	for _, c := range []byte{'*', '=', '_'} {
		if strings.Trim(trimmed, string(c)) == "" {
			return true
		}
	}
	return false
}
