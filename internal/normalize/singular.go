package normalize

import "strings"

// irregular words that the suffix rules would corrupt
var singularExceptions = map[string]string{
	"news":       "news",
	"series":     "series",
	"species":    "species",
	"https":      "https",
	"kubernetes": "kubernetes",
	"postgres":   "postgres",
	"windows":    "windows",
	"devops":     "devops",
	"canvas":     "canvas",
	"alias":      "alias",
	"atlas":      "atlas",
	"always":     "always",
	"caches":     "cache",
	"niches":     "niche",
	"cookies":    "cookie",
	"movies":     "movie",
	"sizes":      "size",
	"prizes":     "prize",
	"analyses":   "analysis",
	"indices":    "index",
	"vertices":   "vertex",
	"matrices":   "matrix",
	"children":   "child",
	"people":     "person",
	"data":       "data",
	"aws":        "aws",
	"ios":        "ios",
	"macos":      "macos",
	"k8s":        "k8s",
}

// Singular strips plural suffixes with a small rule set. It is a heuristic:
// claim words and identifier words go through the same rules, so a consistent
// stem matters more than a correct one.
func Singular(w string) string {
	if s, ok := singularExceptions[w]; ok {
		return s
	}
	switch {
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return w
	case strings.HasSuffix(w, "axes"):
		return strings.TrimSuffix(w, "axes") + "axis"
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return strings.TrimSuffix(w, "ies") + "y"
	case strings.HasSuffix(w, "sses"),
		strings.HasSuffix(w, "xes"),
		strings.HasSuffix(w, "ches"),
		strings.HasSuffix(w, "shes"),
		strings.HasSuffix(w, "zes"):
		return strings.TrimSuffix(w, "es")
	case strings.HasSuffix(w, "s") && len(w) > 3:
		return strings.TrimSuffix(w, "s")
	}
	return w
}
