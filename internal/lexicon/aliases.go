package lexicon

import "strings"

// aliasGroups lists words that should compare equal. Groups sharing a word
// are merged, so the table does not need to be directionally consistent.
var aliasGroups = [][]string{
	{"route", "router", "routing"},
	{"auth", "authentication", "authorization", "authenticate", "authorize", "authn", "authz"},
	{"login", "signin", "logon"},
	{"logout", "signout", "logoff"},
	{"signup", "register", "registration"},
	{"config", "configuration", "configure", "setting", "settings"},
	{"db", "database"},
	{"repo", "repository"},
	{"dir", "directory", "folder"},
	{"env", "environment"},
	{"ws", "websocket"},
	{"cache", "caching", "cached"},
	{"log", "logging", "logger"},
	{"limit", "limiting", "limiter"},
	{"throttle", "throttling", "throttler"},
	{"validate", "validation", "validator"},
	{"parse", "parser", "parsing"},
	{"plugin", "extension", "addon"},
	{"i18n", "internationalization", "localization", "l10n", "translation"},
	{"oauth", "oauth2"},
	{"encrypt", "encryption", "crypto", "cipher"},
	{"k8s", "kubernetes"},
	{"tls", "ssl"},
	{"migrate", "migration", "migrator"},
	{"schedule", "scheduler", "scheduling", "cron"},
	{"notify", "notification", "notifier"},
	{"search", "searching", "finder"},
	{"upload", "uploader", "uploading"},
	{"download", "downloader", "downloading"},
	{"export", "exporter", "exporting"},
	{"import", "importer", "importing"},
	{"render", "renderer", "rendering"},
	{"test", "testing", "tester"},
	{"deploy", "deployment", "deployer"},
	{"metric", "metrics", "telemetry"},
	{"monitor", "monitoring"},
	{"stream", "streaming", "streamer"},
	{"sync", "synchronize", "synchronization"},
	{"compress", "compression", "compressor", "gzip"},
	{"serialize", "serialization", "serializer", "marshal"},
	{"paginate", "pagination", "paginator"},
	{"sort", "sorting", "sorter"},
	{"filter", "filtering"},
	{"retry", "retries", "backoff"},
	{"email", "mail", "smtp"},
	{"msg", "message", "messaging"},
	{"doc", "docs", "documentation"},
	{"perm", "permission", "permissions", "rbac"},
	{"session", "sessions"},
	{"token", "jwt"},
	{"admin", "administrator"},
	{"gql", "graphql"},
	{"js", "javascript"},
	{"ts", "typescript"},
	{"py", "python"},
	{"ui", "frontend"},
	{"theme", "theming"},
}

var aliasRoots, aliasMembers = buildAliases(aliasGroups)

// AliasRoot returns the representative of w's alias group, or w itself
func AliasRoot(w string) string {
	if r, ok := aliasRoots[w]; ok {
		return r
	}
	return w
}

// AliasGroup returns every word that shares root's group, root first.
// Words outside any group return a single-element slice.
func AliasGroup(root string) []string {
	members, ok := aliasMembers[AliasRoot(root)]
	if !ok {
		return []string{root}
	}
	out := make([]string, len(members))
	copy(out, members)
	return out
}

// buildAliases merges overlapping groups with a union-find. The representative
// of a merged set is the first word of the earliest contributing group.
func buildAliases(groups [][]string) (map[string]string, map[string][]string) {
	parent := make(map[string]string)
	order := make(map[string]int)
	next := 0

	var find func(string) string
	find = func(w string) string {
		p := parent[w]
		if p == w {
			return w
		}
		r := find(p)
		parent[w] = r
		return r
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if order[rb] < order[ra] {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	for _, g := range groups {
		for _, w := range g {
			w = strings.ToLower(w)
			if _, ok := parent[w]; !ok {
				parent[w] = w
				order[w] = next
				next++
			}
		}
	}
	for _, g := range groups {
		for _, w := range g[1:] {
			union(strings.ToLower(g[0]), strings.ToLower(w))
		}
	}

	roots := make(map[string]string, len(parent))
	members := make(map[string][]string)
	words := make([]string, len(order))
	for w, i := range order {
		words[i] = w
	}
	for _, w := range words {
		r := find(w)
		roots[w] = r
		members[r] = append(members[r], w)
	}
	return roots, members
}
