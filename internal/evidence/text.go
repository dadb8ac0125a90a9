package evidence

import (
	"strings"

	"github.com/ppiankov/driftscan/internal/model"
)

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// wordIndexes returns the byte offsets of word in content where it is not
// part of a longer identifier. Dashes count as identifier bytes when dash is set.
func wordIndexes(content, word string, dash bool, limit int) []int {
	if word == "" {
		return nil
	}
	bound := func(b byte) bool {
		return isIdentByte(b) || (dash && b == '-')
	}
	var out []int
	from := 0
	for {
		i := strings.Index(content[from:], word)
		if i < 0 {
			return out
		}
		i += from
		end := i + len(word)
		if (i == 0 || !bound(content[i-1])) && (end == len(content) || !bound(content[end])) {
			out = append(out, i)
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
		from = i + 1
	}
}

// countWord counts whole-word occurrences of an identifier
func countWord(content, word string) int {
	return len(wordIndexes(content, word, false, 0))
}

// lineOf converts a byte offset to a 1-based line number
func lineOf(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}

// snippet returns n lines starting at line, or false when out of range
func snippet(file, content string, line, n int) (model.Snippet, bool) {
	if line <= 0 || n <= 0 {
		return model.Snippet{}, false
	}
	lines := strings.Split(content, "\n")
	if line > len(lines) {
		return model.Snippet{}, false
	}
	end := line - 1 + n
	if end > len(lines) {
		end = len(lines)
	}
	text := strings.TrimRight(strings.Join(lines[line-1:end], "\n"), " \t\r\n")
	if strings.TrimSpace(text) == "" {
		return model.Snippet{}, false
	}
	return model.Snippet{File: file, Line: line, Text: text}, true
}
