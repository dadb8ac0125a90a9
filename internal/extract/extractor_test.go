package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/driftscan/internal/cache"
	"github.com/ppiankov/driftscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(cands []Candidate) []string {
	var out []string
	for _, c := range cands {
		out = append(out, c.Text)
	}
	return out
}

func extractDoc(t *testing.T, path, content string) []Candidate {
	t.Helper()
	return NewExtractor(model.DefaultLimits()).ExtractDocument(model.Document{Path: path, Content: content})
}

func TestExtract_FeatureListScenario(t *testing.T) {
	e := NewExtractor(model.DefaultLimits())
	claims := e.Extract([]model.Document{{
		Path:    "README.md",
		Content: "## Features\n- OAuth login\n- Rate limiting",
	}})

	require.Len(t, claims, 2)

	assert.Equal(t, "OAuth login", claims[0].RawText)
	assert.Equal(t, 2, claims[0].SourceLine)
	assert.Equal(t, "README.md", claims[0].SourceFile)
	assert.Equal(t, model.CategoryReadme, claims[0].SourceCategory)
	assert.Equal(t, 1.0, claims[0].ConfidenceWeight)
	assert.Equal(t, "Features", claims[0].Section)
	assert.Contains(t, claims[0].Tokens, "oauth")
	assert.True(t, claims[0].HasNonGeneric)

	assert.Equal(t, "Rate limiting", claims[1].RawText)
	assert.Equal(t, 3, claims[1].SourceLine)
	assert.Contains(t, claims[1].Tokens, "limit")
}

func TestExtract_CheckedItem(t *testing.T) {
	claims := NewExtractor(model.DefaultLimits()).Extract([]model.Document{{
		Path:    "README.md",
		Content: "- [x] Add metrics endpoint\n",
	}})

	require.Len(t, claims, 1)
	assert.Equal(t, "Add metrics endpoint", claims[0].RawText)
	assert.Equal(t, model.CheckboxChecked, claims[0].Checkbox)
	assert.Equal(t, model.CategoryChecklist, claims[0].SourceCategory)
	assert.Equal(t, 0.6, claims[0].ConfidenceWeight)
	assert.Nil(t, claims[0].Plan)
}

func TestExtract_SingleWordDropped(t *testing.T) {
	claims := NewExtractor(model.DefaultLimits()).Extract([]model.Document{{
		Path:    "README.md",
		Content: "## Features\n- fast\n",
	}})
	assert.Empty(t, claims)
}

func TestExtract_NoiseCorpus(t *testing.T) {
	noise := []string{
		"## Features",
		"- Please note that this project is in beta",
		"- https://example.com/docs",
		"- For example, the CLI can export reports",
		"- v1.2.3",
		"- GET /api/users",
		"- Buy me a coffee to support development",
		"- It just works.",
		"- DATABASE_URL: connection string",
		"- [Documentation](https://example.com)",
		"- No telemetry is collected",
		"",
		"## Installation",
		"- Redis cache backend",
		"",
		"## License",
		"MIT licensed. Supports commercial use.",
	}
	cands := extractDoc(t, "README.md", strings.Join(noise, "\n"))
	assert.Empty(t, texts(cands))

	guide := extractDoc(t, "docs/guide.md", "- Run the server locally\n- Configure the cache directory\n")
	assert.Empty(t, texts(guide))
}

func TestExtract_SignalCorpus(t *testing.T) {
	cases := []struct {
		path    string
		content string
		want    string
	}{
		{"README.md", "Supports TLS termination.", "TLS termination"},
		{"README.md", "## Features\n- Plugin system", "Plugin system"},
		{"README.md", "Driftscan is a fast drift detection engine.", "drift detection engine"},
		{"README.md", "## Features\n- **Streaming export**: writes NDJSON as it goes", "Streaming export"},
		{"README.md", "## Chart types\n\n| Type | Notes |\n|------|-------|\n| Bar | Vertical bars |", "Bar chart"},
		{"docs/charts/pie.md", "Pie charts show proportions.", "Pie chart"},
		{"docs/features.md", "# Features\n\n## Live reload\n", "Live reload"},
		{"README.md", "---\nfeatures:\n  - Webhook delivery\n---\n# Demo\n", "Webhook delivery"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Contains(t, texts(extractDoc(t, tc.path, tc.content)), tc.want)
		})
	}
}

func TestExtract_CommaSeparatedList(t *testing.T) {
	cands := extractDoc(t, "README.md", "## Features\n- OAuth, SAML and LDAP\n")
	assert.Equal(t, []string{"OAuth", "SAML", "LDAP"}, texts(cands))
	for _, c := range cands {
		assert.Equal(t, "list:split", c.Heuristic)
		assert.Equal(t, 2, c.Line)
	}
}

func TestExtract_BoldLabelSkipBlock(t *testing.T) {
	content := "## Features\n**Note:** experimental\n- Hidden item\n\n- Visible item\n"
	assert.Equal(t, []string{"Visible item"}, texts(extractDoc(t, "README.md", content)))
}

func TestExtract_GoalListIgnored(t *testing.T) {
	content := "Our goals:\n\n- Keep the footprint small\n- Stay compatible\n"
	assert.Empty(t, extractDoc(t, "README.md", content))
}

func TestExtract_PlanDocument(t *testing.T) {
	content := strings.Join([]string{
		"# Roadmap",
		"## Phase 1 (done)",
		"- [x] Snapshot loader",
		"- [ ] Incremental scans",
		"## Phase 2",
		"- 🚧 Distributed workers",
	}, "\n")
	cands := extractDoc(t, "ROADMAP.md", content)
	require.Len(t, cands, 3)

	assert.Equal(t, "Snapshot loader", cands[0].Text)
	assert.Equal(t, model.CategoryPlan, cands[0].Category)
	assert.Equal(t, &model.PlanMetadata{Status: model.PlanStatusDone, Phase: "Phase 1"}, cands[0].Plan)

	assert.Equal(t, "Incremental scans", cands[1].Text)
	assert.Equal(t, model.PlanStatusPlanned, cands[1].Plan.Status)

	assert.Equal(t, "Distributed workers", cands[2].Text)
	assert.Equal(t, &model.PlanMetadata{Status: model.PlanStatusInProgress, Phase: "Phase 2"}, cands[2].Plan)
}

func TestExtract_Changelog(t *testing.T) {
	content := strings.Join([]string{
		"# Changelog",
		"## [1.2.0] - 2024-05-01",
		"### Added",
		"- Add webhook retries",
		"### Fixed",
		"- Crash on empty snapshot",
		"## [1.1.0]",
		"- feat(cli): JSON output mode",
		"- fix: panic on startup",
	}, "\n")
	cands := extractDoc(t, "CHANGELOG.md", content)

	assert.Equal(t, []string{"Add webhook retries", "JSON output mode"}, texts(cands))
	for _, c := range cands {
		assert.Equal(t, model.CategoryReleaseNote, c.Category)
	}
	assert.Equal(t, "changelog:list:raw", cands[1].Heuristic)
}

func TestExtract_CLIFlags(t *testing.T) {
	cands := extractDoc(t, "README.md", "## Options\n- `--dry-run`: print without writing\n")
	require.Len(t, cands, 1)
	assert.Equal(t, "--dry-run print without writing", cands[0].Text)
	assert.Equal(t, "list:flag", cands[0].Heuristic)
	assert.Equal(t, "Options", cands[0].Section)
}

func TestExtract_Manifests(t *testing.T) {
	cargo := "[package]\nname = \"demo\"\n\n[features]\ndefault = [\"std\"]\nstd = []\nasync-runtime = [\"tokio\"]\n"
	cands := extractDoc(t, "Cargo.toml", cargo)
	require.Len(t, cands, 1)
	assert.Equal(t, "async runtime", cands[0].Text)
	assert.Equal(t, 7, cands[0].Line)
	assert.Equal(t, model.CategoryManifestFlag, cands[0].Category)

	py := "[project]\nname = \"demo\"\n\n[project.optional-dependencies]\npostgres = [\"psycopg\"]\n"
	cands = extractDoc(t, "pyproject.toml", py)
	require.Len(t, cands, 1)
	assert.Equal(t, "postgres", cands[0].Text)
	assert.Equal(t, 5, cands[0].Line)

	assert.Empty(t, extractDoc(t, "Cargo.toml", "[features\nbroken"))
}

func TestExtract_Caps(t *testing.T) {
	content := "## Features\n- OAuth login\n- Rate limiting\n- Plugin system\n"

	limits := model.DefaultLimits()
	limits.MaxPerFile = 2
	assert.Len(t, NewExtractor(limits).ExtractDocument(model.Document{Path: "README.md", Content: content}), 2)

	limits = model.DefaultLimits()
	limits.MaxTotal = 1
	assert.Len(t, NewExtractor(limits).Extract([]model.Document{{Path: "README.md", Content: content}}), 1)
}

func TestExtract_DedupeAcrossBatch(t *testing.T) {
	docs := []model.Document{
		{Path: "README.md", Content: "## Features\n- OAuth login\n"},
		{Path: "docs/auth.md", Content: "## Features\n- OAuth   login\n"},
	}
	claims := NewExtractor(model.DefaultLimits()).Extract(docs)
	require.Len(t, claims, 1)
	assert.Equal(t, "README.md", claims[0].SourceFile)
}

func TestExtract_Idempotent(t *testing.T) {
	docs := []model.Document{
		{Path: "README.md", Content: "# Demo\n\nSupports TLS termination.\n\n## Features\n- OAuth login\n- [ ] Rate limiting\n"},
		{Path: "ROADMAP.md", Content: "## Next\n- Distributed workers\n"},
	}
	e := NewExtractor(model.DefaultLimits())
	first := e.Extract(docs)
	second := e.Extract(docs)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestExtract_CacheRoundTrip(t *testing.T) {
	c := cache.WithStats(cache.NewMemoryCache(time.Minute, time.Minute))
	e := NewExtractor(model.DefaultLimits(), WithCache(c, time.Minute))
	doc := model.Document{Path: "ROADMAP.md", Content: "## Phase 1\n- [x] Snapshot loader\n"}

	first := e.ExtractDocument(doc)
	second := e.ExtractDocument(doc)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), c.Hits())
	assert.Equal(t, int64(1), c.Misses())
}

func TestExtract_GarbageDoesNotPanic(t *testing.T) {
	inputs := []string{
		"",
		"\x00\xff\xfe```\n# \n|||\n- [x]\n**\n",
		"```go\nfunc main() {\n",
		strings.Repeat("| a | b |\n", 50),
		"= Title\n----\nunterminated",
		"Heading\n=======\n> > > quote\n* * *\n1) one\n",
	}
	e := NewExtractor(model.DefaultLimits())
	for _, in := range inputs {
		for _, path := range []string{"README.md", "docs/a.adoc", "docs/b.rst", "docs/c.html", "Cargo.toml"} {
			assert.NotPanics(t, func() {
				e.Extract([]model.Document{{Path: path, Content: in}})
			})
		}
	}
}
