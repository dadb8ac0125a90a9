package dialect

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Markdown handles Markdown and plain text, stripping YAML front-matter
type Markdown struct{}

// NewMarkdown creates the Markdown dialect
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Name returns the dialect name
func (m *Markdown) Name() string {
	return "markdown"
}

// CanHandle reports Markdown-like extensions; the registry also uses Markdown as fallback
func (m *Markdown) CanHandle(docPath string) bool {
	return hasExt(docPath, ".md", ".markdown", ".mdx", ".txt", "")
}

// Front-matter keys whose list values declare features
var frontMatterFeatureKeys = map[string]bool{
	"features":     true,
	"capabilities": true,
	"highlights":   true,
}

var inlineTag = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9-]*(\s[^<>]*)?/?>`)

// Convert blanks the front-matter block, collects declared features and
// reduces inline HTML fragments outside code fences to their text.
func (m *Markdown) Convert(content string) Source {
	lines := strings.Split(content, "\n")
	src := Source{Dialect: m.Name(), Lines: lines}

	if end := frontMatterEnd(lines); end > 0 {
		src.Features = frontMatterFeatures(strings.Join(lines[1:end], "\n"))
		for i := 0; i <= end; i++ {
			lines[i] = ""
		}
	}

	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		if inlineTag.MatchString(line) {
			lines[i] = line[:indentOf(line)] + StripHTML(line)
		}
	}
	return src
}

// frontMatterEnd returns the index of the closing "---" line, or 0 when the
// document has no front-matter.
func frontMatterEnd(lines []string) int {
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "---" {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if t == "---" || t == "..." {
			return i
		}
	}
	return 0
}

// frontMatterFeatures reads features/capabilities lists. Line numbers are
// relative to the document (the YAML starts on line 2).
func frontMatterFeatures(yamlText string) []Item {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(yamlText), &root); err != nil {
		return nil
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil
	}

	var items []Item
	mapping := root.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, val := mapping.Content[i], mapping.Content[i+1]
		if !frontMatterFeatureKeys[strings.ToLower(key.Value)] || val.Kind != yaml.SequenceNode {
			continue
		}
		for _, entry := range val.Content {
			if text := itemText(entry); text != "" {
				items = append(items, Item{Text: text, Line: entry.Line + 1})
			}
		}
	}
	return items
}

// itemText accepts plain scalars or mappings with a name/title field
func itemText(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return strings.TrimSpace(n.Value)
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			switch strings.ToLower(n.Content[i].Value) {
			case "name", "title", "feature":
				return strings.TrimSpace(n.Content[i+1].Value)
			}
		}
	}
	return ""
}

// fenceMarker returns the fence opener of a line, if it is one
func fenceMarker(trimmed string) string {
	for _, f := range []string{"```", "~~~", ":::"} {
		if strings.HasPrefix(trimmed, f) {
			return f
		}
	}
	return ""
}

// StripHTML reduces a line containing inline HTML to its visible text.
// Image alt text is kept; script and style content is dropped.
func StripHTML(line string) string {
	z := html.NewTokenizer(strings.NewReader(line))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "img":
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "alt" {
						b.WriteString(" ")
						b.Write(val)
						b.WriteString(" ")
					}
				}
			case "br", "p", "div", "li", "td", "th":
				b.WriteString(" ")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			}
		}
	}
}
