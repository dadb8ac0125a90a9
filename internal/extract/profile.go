package extract

import (
	"path"
	"regexp"
	"strings"

	"github.com/ppiankov/driftscan/internal/lexicon"
)

// DocKind classifies a document by its path
type DocKind string

const (
	KindReadme      DocKind = "readme"
	KindDoc         DocKind = "doc"
	KindPlan        DocKind = "plan"
	KindReleaseNote DocKind = "release-note"
	KindFeatures    DocKind = "features-doc"
	KindManifest    DocKind = "manifest"
)

// Profile is what the path alone says about a document
type Profile struct {
	Path     string
	Kind     DocKind
	Category string // category hint from a parent directory, e.g. "plugin"
}

var (
	planNamePattern    = regexp.MustCompile(`(^|[-_.])(roadmap|plans?|todos?|milestones?|backlog)($|[-_.])`)
	releaseNamePattern = regexp.MustCompile(`(^|[-_.])(changelog|changes|history|releases?|release[-_]notes|news)($|[-_.])`)
	featureNamePattern = regexp.MustCompile(`^(features?|capabilities|feature[-_]list|features[-_]list)$`)
)

// ProfileFor derives the document profile from its path
func ProfileFor(docPath string) Profile {
	clean := strings.TrimPrefix(path.Clean(strings.ReplaceAll(docPath, "\\", "/")), "./")
	base := strings.ToLower(path.Base(clean))
	stem := strings.TrimSuffix(base, path.Ext(base))

	p := Profile{Path: clean, Kind: KindDoc}
	switch {
	case base == "cargo.toml" || base == "pyproject.toml":
		p.Kind = KindManifest
	case strings.HasPrefix(stem, "readme"):
		p.Kind = KindReadme
	case releaseNamePattern.MatchString(stem):
		p.Kind = KindReleaseNote
	case planNamePattern.MatchString(stem):
		p.Kind = KindPlan
	case featureNamePattern.MatchString(stem):
		p.Kind = KindFeatures
	}

	if dir := path.Dir(clean); dir != "." {
		segments := strings.Split(dir, "/")
		for i := len(segments) - 1; i >= 0; i-- {
			if cat, ok := lexicon.Category(segments[i]); ok {
				p.Category = cat
				break
			}
		}
	}
	return p
}
