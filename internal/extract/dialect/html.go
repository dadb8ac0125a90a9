package dialect

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	excessiveLinesRe = regexp.MustCompile(`\n{3,}`)
)

// HTML converts HTML documentation pages to Markdown. Line numbers refer to
// the converted text because the conversion does not preserve layout.
type HTML struct {
	converter *md.Converter
}

// NewHTML creates the HTML dialect
func NewHTML() *HTML {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &HTML{converter: converter}
}

// Name returns the dialect name
func (h *HTML) Name() string {
	return "html"
}

// CanHandle reports HTML extensions
func (h *HTML) CanHandle(docPath string) bool {
	return hasExt(docPath, ".html", ".htm", ".xhtml")
}

// Convert renders the page as Markdown. A page the converter rejects yields
// its visible text, one line per source line.
func (h *HTML) Convert(content string) Source {
	cleaned := scriptRe.ReplaceAllString(content, "")
	cleaned = styleRe.ReplaceAllString(cleaned, "")

	markdown, err := h.converter.ConvertString(cleaned)
	if err != nil {
		lines := strings.Split(cleaned, "\n")
		for i, line := range lines {
			lines[i] = StripHTML(line)
		}
		return Source{Dialect: h.Name(), Lines: lines}
	}

	markdown = excessiveLinesRe.ReplaceAllString(markdown, "\n\n")
	return Source{Dialect: h.Name(), Lines: strings.Split(strings.TrimSpace(markdown), "\n")}
}
