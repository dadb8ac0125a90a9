package evidence

import (
	"path"
	"sort"
	"strings"

	"github.com/ppiankov/driftscan/internal/lexicon"
	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/normalize"
)

const (
	nameWeight = 2
	pathWeight = 1

	// Path segments only match roots at least this long, or acronyms
	minPathRootLen = 5
)

type rootSet map[string]bool

func newRootSet(roots []string) rootSet {
	s := make(rootSet, len(roots))
	for _, r := range roots {
		s[r] = true
	}
	return s
}

// has reports whether root or any alias spelling of it is in the set
func (s rootSet) has(root string) bool {
	if s[root] {
		return true
	}
	for _, v := range normalize.Variants(root) {
		if s[v] {
			return true
		}
	}
	return false
}

// target is something a claim can match against: a symbol or a file path
type target struct {
	name rootSet // identifier or basename roots
	path rootSet // directory segment roots
}

func symbolTarget(name, file string) target {
	return target{name: newRootSet(normalize.NameRoots(name)), path: dirRoots(file)}
}

func fileTarget(file string) target {
	base := path.Base(file)
	base = strings.TrimSuffix(base, path.Ext(base))
	return target{name: newRootSet(normalize.NameRoots(base)), path: dirRoots(file)}
}

func dirRoots(file string) rootSet {
	s := make(rootSet)
	dir := path.Dir(file)
	if dir == "." {
		return s
	}
	for _, r := range normalize.NameRoots(dir) {
		s[r] = true
	}
	return s
}

func pathEligible(root string) bool {
	return len(root) >= minPathRootLen || lexicon.IsAcronym(root)
}

// hit is the outcome of matching a claim against one target
type hit struct {
	score   int
	matched []string // canonical roots, claim order
	name    bool     // at least one name-level match
}

// matchTarget scores claim roots against t. Adjacent claim roots joined
// ("rate" "limit" -> "ratelimit") count as name matches for both.
func matchTarget(tokens []string, t target) hit {
	nameHit := make(map[string]bool)
	for i, r := range tokens {
		if t.name.has(r) {
			nameHit[r] = true
		}
		if i+1 < len(tokens) {
			joined := normalize.Singular(r + tokens[i+1])
			if t.name[joined] {
				nameHit[r] = true
				nameHit[tokens[i+1]] = true
			}
		}
	}

	var h hit
	for _, r := range tokens {
		switch {
		case nameHit[r]:
			h.score += nameWeight
			h.name = true
			h.matched = append(h.matched, r)
		case pathEligible(r) && t.path.has(r):
			h.score += pathWeight
			h.matched = append(h.matched, r)
		}
	}
	return h
}

// requiredRoots is the number of distinct claim roots a match must cover
func requiredRoots(c model.FeatureClaim, nameMatch bool) int {
	n := 2
	if c.NonGeneric <= 1 || (nameMatch && len(c.Tokens) >= 3) {
		n = 1
	}
	if n > len(c.Tokens) {
		n = len(c.Tokens)
	}
	return n
}

// accepts applies the gating rules to a hit
func accepts(c model.FeatureClaim, h hit) bool {
	if len(h.matched) == 0 {
		return false
	}
	if !c.HasNonGeneric && !h.name {
		return false
	}
	return len(h.matched) >= requiredRoots(c, h.name)
}

func sortedRoots(roots []string) []string {
	out := append([]string(nil), roots...)
	sort.Strings(out)
	return out
}
