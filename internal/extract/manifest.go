package extract

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type cargoManifest struct {
	Features map[string][]string `toml:"features"`
}

type pyprojectManifest struct {
	Project struct {
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Extras map[string][]string `toml:"extras"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// manifestCandidates reads build feature flags from Cargo.toml and
// pyproject.toml. Unparsable manifests yield nothing.
func manifestCandidates(p Profile, content string) []Candidate {
	var names []string
	switch strings.ToLower(path.Base(p.Path)) {
	case "cargo.toml":
		var m cargoManifest
		if err := toml.Unmarshal([]byte(content), &m); err != nil {
			return nil
		}
		for name := range m.Features {
			if name != "default" && !strings.HasPrefix(name, "_") {
				names = append(names, name)
			}
		}
	case "pyproject.toml":
		var m pyprojectManifest
		if err := toml.Unmarshal([]byte(content), &m); err != nil {
			return nil
		}
		for name := range m.Project.OptionalDependencies {
			names = append(names, name)
		}
		for name := range m.Tool.Poetry.Extras {
			names = append(names, name)
		}
	default:
		return nil
	}

	lines := strings.Split(content, "\n")
	seen := make(map[string]bool)
	var out []Candidate
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		text := strings.Join(strings.FieldsFunc(name, func(r rune) bool {
			return r == '-' || r == '_'
		}), " ")
		out = append(out, Candidate{
			Text:           text,
			Line:           keyLine(lines, name),
			Heuristic:      "manifest:feature",
			FeatureContext: true,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// keyLine finds the 1-based line declaring a TOML key, or 1 when not found
func keyLine(lines []string, key string) int {
	re := regexp.MustCompile(`^\s*["']?` + regexp.QuoteMeta(key) + `["']?\s*=`)
	for i, l := range lines {
		if re.MatchString(l) {
			return i + 1
		}
	}
	return 1
}
