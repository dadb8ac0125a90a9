// Package dialect rewrites documentation markup into Markdown-like lines so
// claim extraction only has to understand one syntax.
package dialect

import (
	"path"
	"strings"
)

// Item is a feature declaration found outside the document body (front-matter)
type Item struct {
	Text string
	Line int
}

// Source is a document rewritten into Markdown-like lines.
//
// Dialects that can keep the layout return one output line per input line, so
// Lines[i] is source line i+1. Lines that carry no prose (attributes,
// directives, underlines) are blanked rather than removed.
type Source struct {
	Dialect  string
	Lines    []string
	Features []Item
}

// Dialect converts one markup language
type Dialect interface {
	// Name returns the dialect name
	Name() string

	// CanHandle checks if this dialect handles the given document path
	CanHandle(docPath string) bool

	// Convert rewrites content into Markdown-like lines
	Convert(content string) Source
}

// Registry picks a dialect per document
type Registry struct {
	dialects []Dialect
	fallback Dialect
}

// NewRegistry creates a registry with the built-in dialects
func NewRegistry() *Registry {
	r := &Registry{}

	r.Register(NewAsciiDoc())
	r.Register(NewRST())
	r.Register(NewHTML())

	// Markdown also covers plain text and extension-less READMEs
	r.fallback = NewMarkdown()

	return r
}

// Register registers a new dialect; later registrations do not override earlier ones
func (r *Registry) Register(d Dialect) {
	r.dialects = append(r.dialects, d)
}

// Find finds the dialect for the given path
func (r *Registry) Find(docPath string) Dialect {
	for _, d := range r.dialects {
		if d.CanHandle(docPath) {
			return d
		}
	}
	return r.fallback
}

// Convert converts content with the dialect chosen for docPath
func (r *Registry) Convert(docPath, content string) Source {
	return r.Find(docPath).Convert(normalizeNewlines(content))
}

func hasExt(docPath string, exts ...string) bool {
	ext := strings.ToLower(path.Ext(docPath))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
