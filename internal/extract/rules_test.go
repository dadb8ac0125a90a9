package extract

import (
	"testing"

	"github.com/ppiankov/driftscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectNoise(t *testing.T) {
	limits := model.DefaultLimits()
	cases := []struct {
		text string
		want string
	}{
		{"abc", "too-short"},
		{"Usage", "generic-label"},
		{"Configuration", "generic-label"},
		{"Please note the parser is unstable", "low-signal"},
		{"Install the CLI globally", "instructional"},
		{"GITHUB_TOKEN - personal access token", "env-var"},
		{"Dashboards", "single-token"},
		{"the and or", "empty-tokens"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			rule, rejected := rejectNoise(Candidate{Text: tc.text}, KindReadme, limits)
			assert.True(t, rejected)
			assert.Equal(t, tc.want, rule)
		})
	}
}

func TestRejectNoise_Exemptions(t *testing.T) {
	limits := model.DefaultLimits()

	_, rejected := rejectNoise(Candidate{Text: "SAML"}, KindReadme, limits)
	assert.False(t, rejected, "allow-listed acronym")

	_, rejected = rejectNoise(Candidate{Text: "Dashboards"}, KindFeatures, limits)
	assert.False(t, rejected, "features document keeps single words")

	_, rejected = rejectNoise(Candidate{Text: "Install the CLI globally", FeatureContext: true}, KindReadme, limits)
	assert.False(t, rejected, "feature list context")

	_, rejected = rejectNoise(Candidate{Text: "Add metrics endpoint", Checkbox: model.CheckboxUnchecked}, KindReadme, limits)
	assert.False(t, rejected, "checkbox context")
}

func TestClampText(t *testing.T) {
	assert.Equal(t, "short", clampText("short", 4, 140))
	assert.Equal(t, "Exports reports", clampText("Exports reports, with retries and backoff", 4, 20))
	assert.Equal(t, "Streaming export of reports to many",
		clampText("Streaming export of reports to many destinations; with retries and backoff", 4, 40))
}

func TestAssembleLines(t *testing.T) {
	lines := []string{
		"Some text that",
		"wraps here.",
		"",
		"> quoted line one",
		"> quoted line two",
		"",
		"Title",
		"=====",
		"```go",
		"code",
		"```",
		"- item",
		"  continued",
	}
	got := assembleLines(lines)
	require.Len(t, got, 7)

	assert.Equal(t, logicalLine{Kind: kindParagraph, Text: "Some text that wraps here.", Line: 1}, got[0])
	assert.Equal(t, kindBlank, got[1].Kind)
	assert.Equal(t, logicalLine{Kind: kindParagraph, Text: "quoted line one quoted line two", Line: 4, Quote: true}, got[2])
	assert.Equal(t, logicalLine{Kind: kindHeading, Text: "Title", Line: 7, Level: 1}, got[4])
	assert.Equal(t, kindBlank, got[5].Kind)
	assert.Equal(t, logicalLine{Kind: kindList, Text: "- item continued", Line: 12}, got[6])
}

func TestAssembleLines_TableHeader(t *testing.T) {
	got := assembleLines([]string{"| Name | Notes |", "|---|---|", "| Bar | x |"})
	require.Len(t, got, 2)
	assert.True(t, got[0].Header)
	assert.False(t, got[1].Header)
	assert.Equal(t, []string{"Bar", "x"}, splitRow(got[1].Text))
}

func TestCleanInline(t *testing.T) {
	assert.Equal(t, "Docs and more", cleanInline("[Docs](https://x.io) and **more**"))
	assert.Equal(t, "logo Fast builds", cleanInline("![logo](logo.png) 🚀 _Fast_ builds"))
	assert.Equal(t, "run serve", cleanInline("run `serve`"))
	assert.Equal(t, "A & B", cleanInline("A &amp; B"))
	assert.Equal(t, "--verbose flag", cleanInline("--verbose flag"))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Driftscan supports TLS termination. It also provides JSON output, e.g. for CI.")
	assert.Equal(t, []string{"Driftscan supports TLS termination.", "It also provides JSON output, e.g. for CI."}, got)
}

func TestSplitFeatureList(t *testing.T) {
	assert.Equal(t, []string{"OAuth", "SAML", "LDAP"}, splitFeatureList("OAuth, SAML and LDAP"))
	assert.Equal(t, []string{"CSV", "JSON", "YAML"}, splitFeatureList("CSV, JSON, YAML, etc."))
	assert.Nil(t, splitFeatureList("Caching, which speeds up builds"))
	assert.Nil(t, splitFeatureList("No commas here"))
}

func TestVerbObject(t *testing.T) {
	obj, verb, ok := verbObject("It also provides JSON output.")
	require.True(t, ok)
	assert.Equal(t, "JSON output", obj)
	assert.Equal(t, "provides", verb)

	obj, _, ok = verbObject("Driftscan supports the ability to watch files so that scans rerun")
	require.True(t, ok)
	assert.Equal(t, "watch files", obj)

	_, _, ok = verbObject("It does not support Windows")
	assert.False(t, ok)
	_, _, ok = verbObject("This is not supports-aware")
	assert.False(t, ok)
}

func TestDescriptivePhrase(t *testing.T) {
	phrase, ok := descriptivePhrase("Driftscan is a fast drift detection engine.")
	require.True(t, ok)
	assert.Equal(t, "drift detection engine", phrase)

	_, ok = descriptivePhrase("Driftscan is a lightweight library.")
	assert.False(t, ok)
	_, ok = descriptivePhrase("Nothing descriptive here")
	assert.False(t, ok)
}

func TestItemLabel(t *testing.T) {
	cases := []struct {
		text      string
		cli       bool
		label     string
		heuristic string
	}{
		{"**Plugin system**: load extensions", false, "Plugin system", "list:bold-label"},
		{"Export: writes CSV", false, "Export", "list:colon-label"},
		{"`serve` starts the server", true, "serve starts the server", "list:command"},
		{"`serve` starts the server", false, "starts the server", "list:code-label"},
		{"`--verbose` enable debug logs", false, "--verbose enable debug logs", "list:flag"},
		{"Plain feature text", false, "Plain feature text", "list:raw"},
	}
	for _, tc := range cases {
		label, heuristic := itemLabel(tc.text, tc.cli)
		assert.Equal(t, tc.label, label, tc.text)
		assert.Equal(t, tc.heuristic, heuristic, tc.text)
	}
}

func TestDiscardListItem(t *testing.T) {
	cases := map[string]string{
		"./scripts/build.sh":         "code-path",
		"`make build`":               "code-path",
		"e.g. a custom theme":        "example",
		"x = y * 2":                  "formula",
		"log.level: debug":           "config-key",
		"If the cache is warm, skip": "conditional",
		"No telemetry is collected":  "negative-constraint",
		"[Docs](https://x.io)":       "link-only",
		"`Config`":                   "inline-code-only",
	}
	for text, want := range cases {
		rule, discarded := discardListItem(text, false)
		assert.True(t, discarded, text)
		assert.Equal(t, want, rule, text)
	}

	rule, discarded := discardListItem("Keep the API small", true)
	assert.True(t, discarded)
	assert.Equal(t, "goal-continuation", rule)

	_, discarded = discardListItem("Git integration", false)
	assert.False(t, discarded)
}

func TestClassifyLeadIn(t *testing.T) {
	feature, goal := classifyLeadIn("Driftscan supports:")
	assert.True(t, feature)
	assert.False(t, goal)

	feature, goal = classifyLeadIn("Our goals:")
	assert.False(t, feature)
	assert.True(t, goal)

	feature, goal = classifyLeadIn("It supports many things.")
	assert.False(t, feature)
	assert.False(t, goal)
}

func TestPlanStatus(t *testing.T) {
	pc := parseHeadingStatus("Phase 2: In progress")
	assert.Equal(t, "Phase 2", pc.phase)
	assert.Equal(t, model.PlanStatusInProgress, pc.status)

	pc = parseHeadingStatus("Q3 2025 - planned")
	assert.Equal(t, "Q3 2025", pc.phase)
	assert.Equal(t, model.PlanStatusPlanned, pc.status)

	text, status := stripItemStatus("✅ Snapshot loader")
	assert.Equal(t, "Snapshot loader", text)
	assert.Equal(t, model.PlanStatusDone, status)

	inProgress := planContext{status: model.PlanStatusInProgress}
	assert.Equal(t, model.PlanStatusInProgress, itemPlan(inProgress, model.CheckboxUnchecked, model.PlanStatusUnknown).Status)
	assert.Equal(t, model.PlanStatusDone, itemPlan(inProgress, model.CheckboxChecked, model.PlanStatusUnknown).Status)
	assert.Equal(t, model.PlanStatusPlanned, itemPlan(planContext{}, model.CheckboxUnchecked, model.PlanStatusDone).Status)
}

func TestProfileFor(t *testing.T) {
	cases := []struct {
		path     string
		kind     DocKind
		category string
	}{
		{"README.md", KindReadme, ""},
		{"docs/ROADMAP.md", KindPlan, ""},
		{"CHANGELOG.md", KindReleaseNote, ""},
		{"docs/features.md", KindFeatures, ""},
		{"Cargo.toml", KindManifest, ""},
		{"docs/plugins/auth.md", KindDoc, "plugin"},
		{"./docs/guide.md", KindDoc, ""},
	}
	for _, tc := range cases {
		p := ProfileFor(tc.path)
		assert.Equal(t, tc.kind, p.Kind, tc.path)
		assert.Equal(t, tc.category, p.Category, tc.path)
	}
}
