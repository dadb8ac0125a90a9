package dialect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Find(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, "asciidoc", r.Find("docs/guide.adoc").Name())
	assert.Equal(t, "rst", r.Find("docs/index.rst").Name())
	assert.Equal(t, "html", r.Find("site/features.html").Name())
	assert.Equal(t, "markdown", r.Find("README.md").Name())
	assert.Equal(t, "markdown", r.Find("README").Name())
	assert.Equal(t, "markdown", r.Find("notes.unknown").Name())
}

func TestMarkdown_FrontMatter(t *testing.T) {
	content := `---
title: Demo
features:
  - OAuth login
  - name: Plugin system
---
# Demo

Body text.`

	src := NewRegistry().Convert("README.md", content)

	require.Len(t, src.Lines, 9)
	for i := 0; i < 6; i++ {
		assert.Empty(t, src.Lines[i], "front-matter line %d should be blank", i+1)
	}
	assert.Equal(t, "# Demo", src.Lines[6])

	require.Len(t, src.Features, 2)
	assert.Equal(t, Item{Text: "OAuth login", Line: 4}, src.Features[0])
	assert.Equal(t, Item{Text: "Plugin system", Line: 5}, src.Features[1])
}

func TestMarkdown_InvalidFrontMatter(t *testing.T) {
	content := "---\nfeatures: [unclosed\n---\n# Title"

	src := NewMarkdown().Convert(content)

	assert.Empty(t, src.Features)
	assert.Equal(t, "# Title", src.Lines[3])
}

func TestMarkdown_InlineHTML(t *testing.T) {
	content := "<p align=\"center\"><img src=\"logo.png\" alt=\"Logo\"></p>\n" +
		"- <b>Plugin</b> system<br>\n" +
		"```html\n<div>kept</div>\n```"

	src := NewMarkdown().Convert(content)

	assert.Equal(t, "Logo", src.Lines[0])
	assert.Equal(t, "- Plugin system", src.Lines[1])
	assert.Equal(t, "<div>kept</div>", src.Lines[3])
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Fast & small", StripHTML("<em>Fast</em> &amp; small"))
	assert.Equal(t, "text", StripHTML("<script>alert(1)</script>text"))
}

func TestAsciiDoc_Convert(t *testing.T) {
	content := strings.Join([]string{
		"= Project",
		":toc: left",
		"",
		"== Features",
		"* OAuth login",
		"** Nested item",
		"// hidden comment",
		"[source,go]",
		"----",
		"func main() {}",
		"----",
		"NOTE: Experimental",
		". First step",
	}, "\n")

	src := NewAsciiDoc().Convert(content)

	require.Len(t, src.Lines, 13)
	assert.Equal(t, "# Project", src.Lines[0])
	assert.Empty(t, src.Lines[1])
	assert.Equal(t, "## Features", src.Lines[3])
	assert.Equal(t, "- OAuth login", src.Lines[4])
	assert.Equal(t, "  - Nested item", src.Lines[5])
	assert.Empty(t, src.Lines[6])
	assert.Empty(t, src.Lines[7])
	assert.Equal(t, "```", src.Lines[8])
	assert.Equal(t, "func main() {}", src.Lines[9])
	assert.Equal(t, "```", src.Lines[10])
	assert.Equal(t, "**NOTE:** Experimental", src.Lines[11])
	assert.Equal(t, "1. First step", src.Lines[12])
}

func TestRST_Convert(t *testing.T) {
	content := strings.Join([]string{
		"=======",
		"Project",
		"=======",
		"",
		"Features",
		"--------",
		"",
		"* OAuth login",
		"",
		".. code-block:: python",
		"",
		"   import project",
		"",
		".. note:: Beta only",
		":Author: Someone",
		"#. Numbered",
		"Usage::",
		"",
		"   project --help",
		"Done",
	}, "\n")

	src := NewRST().Convert(content)

	require.Len(t, src.Lines, 20)
	assert.Equal(t, "# Project", src.Lines[1])
	assert.Equal(t, "## Features", src.Lines[4])
	assert.Empty(t, src.Lines[5])
	assert.Equal(t, "* OAuth login", src.Lines[7])
	assert.Empty(t, src.Lines[9])
	assert.Empty(t, src.Lines[11])
	assert.Equal(t, "**Note:** Beta only", src.Lines[13])
	assert.Equal(t, "**Author:** Someone", src.Lines[14])
	assert.Equal(t, "1. Numbered", src.Lines[15])
	assert.Equal(t, "Usage:", src.Lines[16])
	assert.Empty(t, src.Lines[18])
	assert.Equal(t, "Done", src.Lines[19])
}

func TestHTML_Convert(t *testing.T) {
	content := `<html><head><style>p{}</style></head><body>
<h2>Features</h2>
<ul><li>OAuth login</li><li>Rate limiting</li></ul>
</body></html>`

	src := NewHTML().Convert(content)
	joined := strings.Join(src.Lines, "\n")

	assert.Contains(t, joined, "## Features")
	assert.Contains(t, joined, "- OAuth login")
	assert.Contains(t, joined, "- Rate limiting")
	assert.NotContains(t, joined, "p{}")
}
