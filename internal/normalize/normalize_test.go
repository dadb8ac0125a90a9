package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	assert.Equal(t, "oauth 2 0 login", Text("OAuth 2.0 login!"))
	assert.Equal(t, "rate-limiting per/ip", Text("  Rate-limiting,  per/IP  "))
	assert.Equal(t, "", Text("***"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"plugin", "system"}, Tokenize("A plugin system"))
	assert.Equal(t, []string{"ai", "powered", "search"}, Tokenize("AI-powered search"))
	assert.Equal(t, []string{"read", "write"}, Tokenize("read/write"))
	assert.Empty(t, Tokenize("fast"))
	assert.Empty(t, Tokenize("of xy 42"))
}

func TestSingular(t *testing.T) {
	tests := map[string]string{
		"plugins":   "plugin",
		"class":     "class",
		"status":    "status",
		"analysis":  "analysis",
		"axes":      "axis",
		"libraries": "library",
		"classes":   "class",
		"indexes":   "index",
		"matches":   "match",
		"hashes":    "hash",
		"buzzes":    "buzz",
		"bus":       "bus",
		"gas":       "gas",
		"caches":    "cache",
	}
	for in, want := range tests {
		assert.Equal(t, want, Singular(in), "input %q", in)
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, Canonical("router"), Canonical("routing"))
	assert.Equal(t, Canonical("authentication"), Canonical("authorization"))
	assert.Equal(t, "auth", Canonical("Authentication"))
	assert.Equal(t, Canonical("limit"), Canonical("limiting"))
	assert.Equal(t, "config", Canonical("settings"))
}

func TestVariants(t *testing.T) {
	v := Variants(Canonical("routing"))
	assert.Contains(t, v, "route")
	assert.Contains(t, v, "router")
	assert.Contains(t, v, "routing")

	assert.Equal(t, []string{"widget"}, Variants("widget"))
}

func TestNormalize(t *testing.T) {
	ts := Normalize("OAuth login")
	assert.Equal(t, "oauth login", ts.NormalizedText)
	assert.Equal(t, []string{"oauth", "login"}, ts.Tokens)
	assert.Contains(t, ts.Terms, "oauth2")
	assert.Contains(t, ts.Terms, "signin")
	assert.Equal(t, 2, ts.NonGeneric)
	assert.True(t, ts.HasNonGeneric)

	generic := Normalize("Config API")
	assert.Equal(t, []string{"config", "api"}, generic.Tokens)
	assert.False(t, generic.HasNonGeneric)

	dup := Normalize("routing router routes")
	require.Len(t, dup.Tokens, 1)
	assert.Equal(t, "route", dup.Tokens[0])

	assert.Empty(t, Normalize("fast").Tokens)
}

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"oauthLogin", []string{"oauth", "login"}},
		{"parseHTTPHeaders", []string{"parse", "http", "header"}},
		{"rate_limit.go", []string{"rate", "limit", "go"}},
		{"src/plugins/chart-bar.ts", []string{"src", "plugin", "chart", "bar", "ts"}},
		{"oauth2Client", []string{"oauth2", "client"}},
		{"S3Uploader", []string{"s3", "uploader"}},
		{"v2", []string{"v"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Words(tt.in), "input %q", tt.in)
	}
}

func TestNameRoots(t *testing.T) {
	roots := NameRoots("rateLimiter")
	assert.Contains(t, roots, "rate")
	assert.Contains(t, roots, Canonical("limiter"))
	assert.Contains(t, roots, "ratelimiter")
}
