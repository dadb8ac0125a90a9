package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/driftscan/internal/model"
)

// listItem is a parsed bullet or numbered item
type listItem struct {
	Indent   int
	Checkbox model.CheckboxState
	Text     string // item text after marker and checkbox, markup intact
}

func parseListItem(raw string) (listItem, bool) {
	m := listItemPattern.FindStringSubmatch(raw)
	if m == nil {
		return listItem{}, false
	}
	item := listItem{Indent: indentOf(m[1]), Text: strings.TrimSpace(m[5])}
	switch m[4] {
	case "x", "X":
		item.Checkbox = model.CheckboxChecked
	case " ":
		item.Checkbox = model.CheckboxUnchecked
	}
	return item, true
}

var (
	boldLabelPattern  = regexp.MustCompile(`^(\*\*|__)(.+?)(\*\*|__)\s*[:：\-–—]?\s*(.*)$`)
	colonLabelPattern = regexp.MustCompile(`^([^:]{2,60}?):\s+(.+)$`)
	codeLabelPattern  = regexp.MustCompile("^`([^`]+)`\\s*[:\\-–—]?\\s*(.*)$")
)

// itemLabel extracts the claim text of a list item: a bold or colon label when
// present, otherwise the whole text. Flag labels under CLI sections keep their
// description so the flag survives as a hint.
func itemLabel(text string, cli bool) (label, heuristic string) {
	if m := codeLabelPattern.FindStringSubmatch(text); m != nil {
		code := strings.TrimSpace(m[1])
		desc := strings.TrimSpace(m[2])
		if strings.HasPrefix(code, "-") {
			if desc == "" {
				return code, "list:flag"
			}
			return code + " " + desc, "list:flag"
		}
		if cli && desc != "" {
			return code + " " + desc, "list:command"
		}
		if desc != "" {
			return desc, "list:code-label"
		}
		return text, "list:raw"
	}
	if m := boldLabelPattern.FindStringSubmatch(text); m != nil {
		label := strings.TrimRight(strings.TrimSpace(m[2]), ":")
		if label != "" {
			return label, "list:bold-label"
		}
	}
	if m := colonLabelPattern.FindStringSubmatch(text); m != nil {
		label := strings.TrimSpace(m[1])
		if len(strings.Fields(label)) <= 6 && !strings.Contains(strings.ToLower(label), "http") {
			return label, "list:colon-label"
		}
	}
	return text, "list:raw"
}

// discardRule rejects list item text before it becomes a candidate
type discardRule struct {
	name   string
	reject func(text string, goalList bool) bool
}

var (
	codePathPattern    = regexp.MustCompile(`^\.{0,2}/[\w.*-]+(/[\w.*-]+)*/?$|^[\w.-]+(/[\w.*-]+){2,}/?$|^[\w.-]+(/[\w.-]+)*\.(go|js|jsx|ts|tsx|py|rs|java|kt|rb|php|cs|c|h|cpp|md|json|ya?ml|toml|sh|lock)$`)
	shellCommand       = regexp.MustCompile(`^(\$|>)\s|^(npm|yarn|pnpm) (install|i|run|add)\b|^go (get|install|run|build)\b|^pip3? install\b|^cargo (add|install|run|build)\b|^git clone\b|^docker (run|pull|build|compose)\b|^make \w+$|^brew install\b|^kubectl (apply|get|create)\b|^helm (install|upgrade|repo)\b|^(curl|wget) \S|^(apt|apt-get) install\b|^poetry (add|install)\b|^(python3?|node) \S+\.(py|js)\b`)
	examplePattern     = regexp.MustCompile(`(?i)^(e\.g\.|eg\b|ex\b|example\b|examples\b|for example|for instance|such as|sample\b)`)
	formulaPattern     = regexp.MustCompile(`[A-Za-z0-9)\]]\s*(=|<=|>=|≤|≥|≈|\+=|\*|/|\^)\s*[A-Za-z0-9(]|\\(frac|sum|sqrt)|\$[^$]+\$`)
	configKeyPattern   = regexp.MustCompile(`^[a-z0-9_]+([._][a-z0-9_]+)+\s*[:=]\s*\S|^[A-Za-z0-9_.-]+\s*=\s*\S+$`)
	conditionalPattern = regexp.MustCompile(`(?i)^(if|when|unless|whenever|in case|once|only if)\b`)
	negativePattern    = regexp.MustCompile(`(?i)^(no|not|never|don't|do not|does not|doesn't|cannot|can't|without|avoid|must not|should not|won't|will not|nothing)\b|\bis not supported\b|\bnot (yet )?supported\b`)
	linkOnlyPattern    = regexp.MustCompile(`^(\s*(\[[^\]]*\]\([^)]*\)|<?https?://\S+>?)[\s,|·•-]*)+$`)
	codeOnlyPattern    = regexp.MustCompile("^`[^`]+`[.,;:]?$")
)

// listDiscardRules run in order; the first match discards the item
var listDiscardRules = []discardRule{
	{"code-path", func(t string, _ bool) bool {
		plain := strings.Trim(t, "`")
		return codePathPattern.MatchString(plain) || shellCommand.MatchString(plain)
	}},
	{"example", func(t string, _ bool) bool { return examplePattern.MatchString(t) }},
	{"formula", func(t string, _ bool) bool { return formulaPattern.MatchString(t) && letterRatio(t) < 0.75 }},
	{"config-key", func(t string, _ bool) bool { return configKeyPattern.MatchString(strings.Trim(t, "`")) }},
	{"conditional", func(t string, _ bool) bool { return conditionalPattern.MatchString(t) }},
	{"negative-constraint", func(t string, _ bool) bool { return negativePattern.MatchString(t) }},
	{"goal-continuation", func(_ string, goal bool) bool { return goal }},
	{"link-only", func(t string, _ bool) bool { return linkOnlyPattern.MatchString(t) }},
	{"inline-code-only", func(t string, _ bool) bool { return codeOnlyPattern.MatchString(t) }},
}

// discardListItem returns the name of the first discard rule that matches
func discardListItem(text string, goalList bool) (string, bool) {
	for _, r := range listDiscardRules {
		if r.reject(text, goalList) {
			return r.name, true
		}
	}
	return "", false
}

func letterRatio(s string) float64 {
	var letters, total int
	for _, r := range s {
		if r == ' ' {
			continue
		}
		total++
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

// Lead-in phrases that announce a feature list or a goal list
var (
	featureLeadIn = regexp.MustCompile(`(?i)\b(features?|capabilities|supports?|provides?|includes?|offers?|you can|lets you|allows you to|comes with|ships with|highlights)\b[^.]*:$`)
	goalLeadIn    = regexp.MustCompile(`(?i)\b(goals?|aims?|objectives?|we want|we need|should|must|motivation|purpose|in order to)\b[^.]*:$`)
)

// classifyLeadIn inspects a paragraph that introduces a list
func classifyLeadIn(text string) (feature, goal bool) {
	t := strings.TrimSpace(text)
	if !strings.HasSuffix(t, ":") {
		return false, false
	}
	if goalLeadIn.MatchString(t) {
		return false, true
	}
	return featureLeadIn.MatchString(t), false
}
