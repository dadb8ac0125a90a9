package evidence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/normalize"
	"github.com/ppiankov/driftscan/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claim(text string) model.FeatureClaim {
	ts := normalize.Normalize(text)
	return model.FeatureClaim{
		RawText:          text,
		NormalizedText:   ts.NormalizedText,
		Tokens:           ts.Tokens,
		Terms:            ts.Terms,
		NonGeneric:       ts.NonGeneric,
		HasNonGeneric:    ts.HasNonGeneric,
		SourceFile:       "README.md",
		SourceLine:       2,
		SourceCategory:   model.CategoryReadme,
		ConfidenceWeight: 1,
	}
}

func parseSnapshot(t *testing.T, data string) *snapshot.Snapshot {
	t.Helper()
	s, err := snapshot.Parse([]byte(data))
	require.NoError(t, err)
	return s
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

const scenarioSnapshot = `{
  "files": {
    "src/auth.ts": {
      "symbols": {"exports": [{"name": "oauthLogin", "line": 3, "exported": true}],
                  "functions": [], "classes": [], "types": [], "constants": []},
      "references": [{"name": "oauthLogin", "count": 1}]
    },
    "src/routes.ts": {"references": [{"name": "oauthLogin", "count": 2}]}
  },
  "dependencies": {"src/routes.ts": ["./auth"]},
  "truncated": false
}`

var scenarioSources = map[string]string{
	"src/auth.ts":   "// auth helpers\n\nexport function oauthLogin(user) {\n  return redirect(user)\n}\n",
	"src/routes.ts": "import { oauthLogin } from './auth'\n\nrouter.get('/login', oauthLogin)\n",
}

func TestRun_FeatureListScenario(t *testing.T) {
	root := writeFiles(t, scenarioSources)
	m := NewMatcher(parseSnapshot(t, scenarioSnapshot), root, model.DefaultLimits())

	res := m.Run(context.Background(), []model.FeatureClaim{claim("OAuth login"), claim("Rate limiting")})
	require.True(t, res.Available)
	require.Len(t, res.Records, 2)

	oauth := res.Records[0]
	assert.Equal(t, "OAuth login", oauth.Claim)
	assert.Equal(t, model.StatusImplemented, oauth.Status)
	assert.Equal(t, ReasonSymbolUsed, oauth.Reason)
	require.Len(t, oauth.Definitions, 1)
	assert.Equal(t, "oauthLogin", oauth.Definitions[0].Name)
	assert.Equal(t, "src/auth.ts", oauth.Definitions[0].File)
	assert.True(t, oauth.Definitions[0].Exported)
	assert.True(t, oauth.Definitions[0].Used)
	assert.False(t, oauth.TestOnly())
	assert.Equal(t, []model.UsageReference{{File: "src/routes.ts", Count: 2}}, oauth.UsageReferences)
	require.NotEmpty(t, oauth.Snippets)
	assert.Equal(t, model.Snippet{File: "src/auth.ts", Line: 3, Text: "export function oauthLogin(user) {\n  return redirect(user)"}, oauth.Snippets[0])

	rate := res.Records[1]
	assert.Equal(t, model.StatusMissing, rate.Status)
	assert.Equal(t, ReasonNoMatch, rate.Reason)
	assert.Empty(t, rate.Definitions)
	assert.Empty(t, rate.Fallback)
}

func TestRun_NoSnapshot(t *testing.T) {
	m := NewMatcher(nil, "", model.DefaultLimits())
	res := m.Run(context.Background(), []model.FeatureClaim{claim("OAuth login")})
	assert.False(t, res.Available)
	assert.Equal(t, ReasonNoSnapshot, res.Reason)
	assert.Empty(t, res.Records)
	assert.False(t, m.Available())
}

func TestEvaluate_LiteralScanOfImporter(t *testing.T) {
	snap := parseSnapshot(t, `{
	  "files": {"src/auth.ts": {"symbols": {"functions": [{"name": "oauthLogin", "line": 3}]}}, "src/routes.ts": {}},
	  "dependencies": {"src/routes.ts": ["./auth"]}
	}`)
	root := writeFiles(t, scenarioSources)

	rec := NewMatcher(snap, root, model.DefaultLimits()).Evaluate(context.Background(), claim("OAuth login"))
	assert.Equal(t, model.StatusImplemented, rec.Status)
	assert.Equal(t, []model.UsageReference{{File: "src/routes.ts", Count: 2}}, rec.UsageReferences)
}

func TestEvaluate_UsageSources(t *testing.T) {
	cases := []struct {
		name string
		snap string
		used bool
	}{
		{
			name: "repo reference index",
			snap: `{"files": {"src/limit.ts": {"symbols": {"functions": [{"name": "rateLimiter", "line": 1}]}},
			        "src/server.ts": {"references": [{"name": "rateLimiter", "count": 1}]}}}`,
			used: true,
		},
		{
			name: "test references do not count",
			snap: `{"files": {"src/limit.ts": {"symbols": {"functions": [{"name": "rateLimiter", "line": 1}]}},
			        "src/limit.test.ts": {"references": [{"name": "rateLimiter", "count": 3}]}}}`,
			used: false,
		},
		{
			name: "exported with importer",
			snap: `{"files": {"src/limit.ts": {"symbols": {"exports": [{"name": "rateLimiter", "line": 1}]}}, "src/app.ts": {}},
			        "dependencies": {"src/app.ts": ["./limit"]}}`,
			used: true,
		},
		{
			name: "recurs in own file",
			snap: `{"files": {"src/limit.ts": {"symbols": {"functions": [{"name": "rateLimiter", "line": 1}]},
			        "references": [{"name": "rateLimiter", "count": 2}]}}}`,
			used: true,
		},
		{
			name: "defined once",
			snap: `{"files": {"src/limit.ts": {"symbols": {"exports": [{"name": "rateLimiter", "line": 1}]}}}}`,
			used: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := NewMatcher(parseSnapshot(t, tc.snap), "", model.DefaultLimits()).Evaluate(context.Background(), claim("Rate limiting"))
			require.Len(t, rec.Definitions, 1)
			assert.Equal(t, tc.used, rec.Definitions[0].Used)
			if tc.used {
				assert.Equal(t, model.StatusImplemented, rec.Status)
			} else {
				assert.Equal(t, model.StatusPartial, rec.Status)
				assert.Equal(t, ReasonSymbolUnused, rec.Reason)
			}
		})
	}
}

func TestEvaluate_TestOnly(t *testing.T) {
	snap := parseSnapshot(t, `{"files": {
	  "src/auth.test.ts": {"symbols": {"functions": [{"name": "oauthLoginFlow", "line": 4}]}},
	  "src/main.ts": {}
	}}`)
	rec := NewMatcher(snap, "", model.DefaultLimits()).Evaluate(context.Background(), claim("OAuth login"))

	require.Len(t, rec.Definitions, 1)
	assert.True(t, rec.Definitions[0].TestOnly)
	assert.True(t, rec.TestOnly())
	assert.Equal(t, model.StatusPartial, rec.Status)
}

func TestEvaluate_PrefersNonTestSymbols(t *testing.T) {
	snap := parseSnapshot(t, `{"files": {
	  "src/auth.ts": {"symbols": {"exports": [{"name": "loginWithOauth", "line": 1}]}},
	  "src/auth.test.ts": {"symbols": {"functions": [{"name": "oauthLogin", "line": 1}]}}
	}}`)
	rec := NewMatcher(snap, "", model.DefaultLimits()).Evaluate(context.Background(), claim("OAuth login"))

	require.Len(t, rec.Definitions, 1)
	assert.Equal(t, "loginWithOauth", rec.Definitions[0].Name)
	assert.False(t, rec.TestOnly())
}

func TestEvaluate_GenericClaimNeedsNameMatch(t *testing.T) {
	snap := parseSnapshot(t, `{"files": {"src/config/loader.ts": {"symbols": {"exports": [{"name": "loadSettings", "line": 1}]}}}}`)
	m := NewMatcher(snap, "", model.DefaultLimits())

	c := claim("Config file")
	require.False(t, c.HasNonGeneric)
	rec := m.Evaluate(context.Background(), c)
	assert.Equal(t, model.StatusPartial, rec.Status)
	require.Len(t, rec.Definitions, 1)
	assert.Equal(t, "loadSettings", rec.Definitions[0].Name)
}

func TestEvaluate_SingleNonGenericTokenMatchesGenericRoot(t *testing.T) {
	snap := parseSnapshot(t, `{"files": {
	  "src/config.ts": {"symbols": {"exports": [{"name": "loadConfig", "line": 1}]}},
	  "src/main.ts": {"references": [{"name": "loadConfig", "count": 1}]}
	}, "dependencies": {"src/main.ts": ["./config"]}}`)

	c := claim("Kafka config")
	require.Equal(t, 1, c.NonGeneric)
	rec := NewMatcher(snap, "", model.DefaultLimits()).Evaluate(context.Background(), c)
	assert.Equal(t, model.StatusImplemented, rec.Status)
	require.NotEmpty(t, rec.Definitions)
	assert.Equal(t, "loadConfig", rec.Definitions[0].Name)
}

func TestEvaluate_FileFallback(t *testing.T) {
	one := `{"files": {"billing/invoice/export.go": {}, "billing/ledger.go": {}}}`
	two := `{"files": {"billing/invoice/export.go": {}, "billing/invoice/export_csv.go": {}, "billing/invoice/export_test.go": {}}}`

	rec := NewMatcher(parseSnapshot(t, one), "", model.DefaultLimits()).Evaluate(context.Background(), claim("Invoice export"))
	assert.Equal(t, model.StatusPartial, rec.Status)
	assert.Equal(t, ReasonFilePartial, rec.Reason)
	require.Len(t, rec.Fallback, 1)
	assert.Equal(t, model.MatchFile, rec.Fallback[0].Kind)
	assert.Equal(t, "billing/invoice/export.go", rec.Fallback[0].File.Path)
	assert.Equal(t, []string{"export", "invoice"}, rec.Fallback[0].File.Matched)

	rec = NewMatcher(parseSnapshot(t, two), "", model.DefaultLimits()).Evaluate(context.Background(), claim("Invoice export"))
	assert.Equal(t, model.StatusImplemented, rec.Status)
	assert.Equal(t, ReasonFileFallback, rec.Reason)
	assert.Len(t, rec.Fallback, 2)

	strict := model.MatchConfig{FileMatchesForImplemented: 3}
	rec = NewMatcher(parseSnapshot(t, two), "", model.DefaultLimits(), WithMatchConfig(strict)).Evaluate(context.Background(), claim("Invoice export"))
	assert.Equal(t, model.StatusPartial, rec.Status)
}

func TestEvaluate_FlagHint(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"cmd/root.go": "package cmd\n\nfunc init() {\n\tcmd.Flags().Bool(\"dry-run\", false, \"print only\")\n\tcmd.Flags().Bool(\"verbose\", false, \"debug logs\")\n}\n",
	})
	snap := parseSnapshot(t, `{"files": {"cmd/root.go": {}}}`)
	m := NewMatcher(snap, root, model.DefaultLimits())

	c := claim("--dry-run print without writing")
	c.Section = "Options"
	rec := m.Evaluate(context.Background(), c)
	assert.Equal(t, model.StatusImplemented, rec.Status)
	assert.Equal(t, ReasonFlagMatch, rec.Reason)
	require.NotEmpty(t, rec.Fallback)
	assert.Equal(t, model.NewFlagMatch("dry-run", "cmd/root.go", 4), rec.Fallback[0])
	require.Len(t, rec.Snippets, 1)
	assert.Equal(t, 4, rec.Snippets[0].Line)

	label := claim("verbose Enable debug logging")
	label.Section = "Flags"
	rec = m.Evaluate(context.Background(), label)
	assert.Equal(t, model.StatusImplemented, rec.Status)
	assert.Equal(t, ReasonFlagMatch, rec.Reason)

	label.Section = "Overview"
	rec = m.Evaluate(context.Background(), label)
	assert.NotEqual(t, ReasonFlagMatch, rec.Reason)
}

func TestEvaluate_DiskScanWhenIncomplete(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"billing/invoice/export.go":      "package invoice\n",
		"billing/invoice/export_csv.go":  "package invoice\n",
		"node_modules/invoice/export.js": "module.exports = {}\n",
		"docs/invoice/export.md":         "# Export\n",
	})
	snap := parseSnapshot(t, `{"files": {}, "truncated": true}`)

	m := NewMatcher(snap, root, model.DefaultLimits())
	rec := m.Evaluate(context.Background(), claim("Invoice export"))
	assert.Equal(t, model.StatusImplemented, rec.Status)
	assert.Len(t, rec.Fallback, 2)
	assert.Equal(t, 2, m.Stats().DiskScanFiles)

	m = NewMatcher(snap, root, model.DefaultLimits(), WithExcludeGlobs([]string{"billing/**"}))
	rec = m.Evaluate(context.Background(), claim("Invoice export"))
	assert.Equal(t, model.StatusMissing, rec.Status)

	limits := model.DefaultLimits()
	limits.MaxPathScanFiles = 1
	m = NewMatcher(snap, root, limits)
	rec = m.Evaluate(context.Background(), claim("Invoice export"))
	assert.Equal(t, model.StatusPartial, rec.Status)
	assert.Equal(t, int64(1), m.Stats().BudgetExhausted)
}

func TestEvaluate_NoTokens(t *testing.T) {
	rec := NewMatcher(parseSnapshot(t, scenarioSnapshot), "", model.DefaultLimits()).Evaluate(context.Background(), model.FeatureClaim{RawText: "the and"})
	assert.Equal(t, model.StatusMissing, rec.Status)
	assert.Equal(t, ReasonNoTokens, rec.Reason)
}

const rankedSnapshot = `{"files": {
  "src/a.ts": {"symbols": {"exports": [{"name": "oauthLogin", "line": 1}]}},
  "src/b.ts": {"symbols": {"functions": [{"name": "loginOauth", "line": 1}]}},
  "src/c.ts": {"references": [{"name": "loginOauth", "count": 1}]},
  "src/d.ts": {"references": [{"name": "loginOauth", "count": 4}]}
}}`

func statusRank(s model.EvidenceStatus) int {
	switch s {
	case model.StatusImplemented:
		return 2
	case model.StatusPartial:
		return 1
	}
	return 0
}

func TestEvaluate_MonotonicInCaps(t *testing.T) {
	snap := parseSnapshot(t, rankedSnapshot)
	c := claim("OAuth login")

	prev := -1
	prevDefs := 0
	for _, n := range []int{1, 2, 5} {
		limits := model.DefaultLimits()
		limits.MaxDefsPerFeature = n
		rec := NewMatcher(snap, "", limits).Evaluate(context.Background(), c)
		assert.GreaterOrEqual(t, statusRank(rec.Status), prev, "maxDefsPerFeature=%d", n)
		assert.GreaterOrEqual(t, len(rec.Definitions), prevDefs)
		prev = statusRank(rec.Status)
		prevDefs = len(rec.Definitions)
	}
	assert.Equal(t, 2, prev)

	limits := model.DefaultLimits()
	limits.MaxRefsPerFeature = 1
	rec := NewMatcher(snap, "", limits).Evaluate(context.Background(), c)
	assert.Equal(t, []model.UsageReference{{File: "src/d.ts", Count: 4}}, rec.UsageReferences)

	rec = NewMatcher(snap, "", model.DefaultLimits()).Evaluate(context.Background(), c)
	assert.Equal(t, []model.UsageReference{{File: "src/d.ts", Count: 4}, {File: "src/c.ts", Count: 1}}, rec.UsageReferences)
}

func TestRun_Deterministic(t *testing.T) {
	root := writeFiles(t, scenarioSources)
	snap := parseSnapshot(t, scenarioSnapshot)
	claims := []model.FeatureClaim{claim("OAuth login"), claim("Rate limiting"), claim("Login routes"), claim("Auth helpers")}

	first := NewMatcher(snap, root, model.DefaultLimits(), WithWorkers(4)).Run(context.Background(), claims)
	second := NewMatcher(snap, root, model.DefaultLimits(), WithWorkers(1)).Run(context.Background(), claims)
	assert.Equal(t, first, second)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewMatcher(parseSnapshot(t, scenarioSnapshot), "", model.DefaultLimits()).Run(ctx, []model.FeatureClaim{claim("OAuth login")})
	require.True(t, res.Available)
	require.Len(t, res.Records, 1)
	assert.Equal(t, model.StatusMissing, res.Records[0].Status)
}
