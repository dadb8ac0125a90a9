package evidence

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/driftscan/internal/cache"
	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceReader(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/a.go":   "package a\n",
		"src/big.go": strings.Repeat("x", 64),
		"bin/tool":   "ELF\x00\x01",
	})
	c := cache.WithStats(cache.NewMemoryCache(time.Minute, time.Minute))
	r := NewSourceReader(root, 32, WithContentCache(c), WithLimiter(worker.NewLimiter(0, 1)))
	ctx := context.Background()

	content, ok := r.Read(ctx, "./src/a.go")
	require.True(t, ok)
	assert.Equal(t, "package a\n", content)

	_, ok = r.Read(ctx, "src/a.go")
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Hits())

	_, ok = r.Read(ctx, "src/big.go")
	assert.False(t, ok, "oversized")
	_, ok = r.Read(ctx, "src/big.go")
	assert.False(t, ok)
	_, ok = r.Read(ctx, "bin/tool")
	assert.False(t, ok, "binary")
	_, ok = r.Read(ctx, "../../etc/passwd")
	assert.False(t, ok, "outside root")

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.FilesRead)
	assert.Equal(t, int64(10), stats.BytesRead)
	assert.Equal(t, int64(3), stats.FilesSkipped)

	r.NoteBudgetExhausted()
	assert.Equal(t, int64(1), r.Stats().BudgetExhausted)
}

func TestSourceReader_NoRoot(t *testing.T) {
	_, ok := NewSourceReader("", 0).Read(context.Background(), "src/a.go")
	assert.False(t, ok)
}

func TestWordIndexes(t *testing.T) {
	assert.Equal(t, 2, countWord("oauthLogin(oauthLogin)", "oauthLogin"))
	assert.Equal(t, 0, countWord("oauthLoginX and myoauthLogin", "oauthLogin"))
	assert.Equal(t, 1, countWord("$oauthLogin oauthLogin", "oauthLogin"))

	content := "a --dry-run-x\nb --dry-run\n"
	idx := wordIndexes(content, "--dry-run", true, 0)
	require.Len(t, idx, 1)
	assert.Equal(t, 2, lineOf(content, idx[0]))

	assert.Len(t, wordIndexes("x x x", "x", false, 2), 2)
	assert.Nil(t, wordIndexes("abc", "", false, 0))
}

func TestSnippet(t *testing.T) {
	content := "one\ntwo\nthree\n"
	s, ok := snippet("f.go", content, 2, 2)
	require.True(t, ok)
	assert.Equal(t, model.Snippet{File: "f.go", Line: 2, Text: "two\nthree"}, s)

	_, ok = snippet("f.go", content, 0, 2)
	assert.False(t, ok)
	_, ok = snippet("f.go", content, 9, 2)
	assert.False(t, ok)
	_, ok = snippet("f.go", "a\n\n\n", 2, 2)
	assert.False(t, ok)
}

func TestFlagHints(t *testing.T) {
	assert.Equal(t, []string{"--dry-run", "dry-run", "dry_run", "dryrun", "dryRun"},
		flagHints(model.FeatureClaim{RawText: "--dry-run print without writing"}))
	assert.Equal(t, []string{"--verbose", `"verbose"`},
		flagHints(model.FeatureClaim{RawText: "verbose: more logs", Section: "Options"}))
	assert.Nil(t, flagHints(model.FeatureClaim{RawText: "verbose: more logs", Section: "Features"}))
	assert.Nil(t, flagHints(model.FeatureClaim{RawText: "3 modes", Section: "Options"}))
}

func TestMatchTarget(t *testing.T) {
	h := matchTarget([]string{"rate", "limit"}, symbolTarget("ratelimit", "src/mw.go"))
	assert.Equal(t, 4, h.score)
	assert.True(t, h.name)

	h = matchTarget([]string{"invoice", "export"}, fileTarget("billing/invoice/export.go"))
	assert.Equal(t, 3, h.score)
	assert.Equal(t, []string{"invoice", "export"}, h.matched)

	// short roots never match on directories
	h = matchTarget([]string{"auth"}, fileTarget("auth/session.go"))
	assert.Empty(t, h.matched)
	h = matchTarget([]string{"grpc"}, fileTarget("grpc/session.go"))
	assert.Equal(t, []string{"grpc"}, h.matched)
}

func TestRequiredRoots(t *testing.T) {
	two := model.FeatureClaim{Tokens: []string{"oauth", "login"}, NonGeneric: 2, HasNonGeneric: true}
	assert.Equal(t, 2, requiredRoots(two, true))

	three := model.FeatureClaim{Tokens: []string{"oauth", "login", "flow"}, NonGeneric: 3, HasNonGeneric: true}
	assert.Equal(t, 1, requiredRoots(three, true))
	assert.Equal(t, 2, requiredRoots(three, false))

	one := model.FeatureClaim{Tokens: []string{"oauth", "config"}, NonGeneric: 1, HasNonGeneric: true}
	assert.Equal(t, 1, requiredRoots(one, false))
	assert.True(t, accepts(one, hit{matched: []string{"config"}, name: true}), "one root suffices with a single non-generic token")
	assert.True(t, accepts(one, hit{matched: []string{"oauth"}, name: true}))
	assert.False(t, accepts(two, hit{matched: []string{"login"}, name: true}))

	generic := model.FeatureClaim{Tokens: []string{"config", "file"}}
	assert.False(t, accepts(generic, hit{matched: []string{"config"}}), "generic claims need a name-level match")
	assert.True(t, accepts(generic, hit{matched: []string{"config"}, name: true}))
}
