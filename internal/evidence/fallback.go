package evidence

import (
	"context"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ppiankov/driftscan/internal/lexicon"
	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/snapshot"
)

// Directories never descended into by the disk scan
var ignoredDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, "target": true, "__pycache__": true, ".venv": true,
	"venv": true, ".idea": true, ".vscode": true, ".next": true, "coverage": true,
	".driftscan": true,
}

// fileCandidate is a non-test source file with precomputed path roots
type fileCandidate struct {
	path   string
	target target
}

// candidateFiles returns the non-test source files known to the snapshot,
// plus a bounded walk of the root when the snapshot is incomplete
func (m *Matcher) candidateFiles() []fileCandidate {
	m.filesOnce.Do(func() {
		seen := make(map[string]bool)
		var paths []string
		add := func(p string) {
			if seen[p] || snapshot.IsTestPath(p) {
				return
			}
			seen[p] = true
			paths = append(paths, p)
		}
		for _, p := range m.index.Files() {
			add(p)
		}
		if m.index.Incomplete() {
			disk := m.diskScan()
			m.diskFiles = len(disk)
			for _, p := range disk {
				add(p)
			}
		}
		sort.Strings(paths)
		for _, p := range paths {
			m.files = append(m.files, fileCandidate{path: p, target: fileTarget(p)})
		}
	})
	return m.files
}

// diskScan lists source files under the root, skipping ignored directories
// and exclude globs, capped at MaxPathScanFiles
func (m *Matcher) diskScan() []string {
	if m.root == "" {
		return nil
	}
	var out []string
	err := filepath.WalkDir(m.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(m.root, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if ignoredDirs[d.Name()] || m.excluded(rel+"/") {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !snapshot.IsSourcePath(rel) || m.excluded(rel) {
			return nil
		}
		if len(out) >= m.limits.MaxPathScanFiles {
			m.reader.NoteBudgetExhausted()
			return fs.SkipAll
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		m.logger.Debug("disk scan stopped", "root", m.root, "error", err)
	}
	return out
}

func (m *Matcher) excluded(rel string) bool {
	for _, g := range m.excludeGlobs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if strings.HasSuffix(rel, "/") {
			if ok, _ := doublestar.Match(g, rel+"x"); ok {
				return true
			}
		}
	}
	return false
}

// matchFiles returns file-path matches for a claim, sorted by path
func (m *Matcher) matchFiles(c model.FeatureClaim) []model.Match {
	var out []model.Match
	for _, f := range m.candidateFiles() {
		h := matchTarget(c.Tokens, f.target)
		if !accepts(c, h) {
			continue
		}
		out = append(out, model.NewFileMatch(f.path, sortedRoots(h.matched)))
	}
	return out
}

var (
	flagPattern  = regexp.MustCompile(`(?:^|[\s(` + "`" + `"'])--([a-zA-Z0-9][a-zA-Z0-9_-]*)`)
	labelPattern = regexp.MustCompile(`^-{0,2}([a-zA-Z][a-zA-Z0-9_-]*[a-zA-Z0-9])$`)
)

// flagHints returns the flag spellings a claim may appear as in source.
// Explicit "--flag" substrings always count; under a CLI heading the leading
// word of the claim is treated as the flag name.
func flagHints(c model.FeatureClaim) []string {
	var names []string
	for _, sm := range flagPattern.FindAllStringSubmatch(c.RawText, -1) {
		names = append(names, sm[1])
	}
	if len(names) == 0 && c.Section != "" && lexicon.IsCLISection(c.Section) {
		fields := strings.Fields(c.RawText)
		if len(fields) > 0 {
			if sm := labelPattern.FindStringSubmatch(strings.TrimRight(fields[0], ":,")); sm != nil {
				names = append(names, sm[1])
			}
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, n := range names {
		for _, form := range flagForms(n) {
			if !seen[form] {
				seen[form] = true
				out = append(out, form)
			}
		}
	}
	return out
}

// flagForms expands a flag name: dry-run -> --dry-run dry-run dry_run dryrun dryRun.
// A single-word name only yields "--name" and the quoted "\"name\"".
func flagForms(name string) []string {
	parts := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) == 0 {
		return nil
	}
	if len(parts) == 1 {
		return []string{"--" + parts[0], `"` + parts[0] + `"`}
	}
	camel := parts[0]
	for _, p := range parts[1:] {
		camel += strings.ToUpper(p[:1]) + p[1:]
	}
	return []string{
		"--" + strings.Join(parts, "-"),
		strings.Join(parts, "-"),
		strings.Join(parts, "_"),
		strings.Join(parts, ""),
		camel,
	}
}

// matchFlags scans source files for flag spellings, one match per file,
// bounded by MaxFlagScanFiles and MaxFlagScanBytes
func (m *Matcher) matchFlags(ctx context.Context, forms []string) []model.Match {
	if len(forms) == 0 {
		return nil
	}
	var out []model.Match
	var scanned int
	var bytes int64
	for _, f := range m.candidateFiles() {
		if ctx.Err() != nil {
			return out
		}
		if scanned >= m.limits.MaxFlagScanFiles || bytes >= m.limits.MaxFlagScanBytes {
			m.reader.NoteBudgetExhausted()
			break
		}
		content, ok := m.reader.Read(ctx, f.path)
		if !ok {
			continue
		}
		scanned++
		bytes += int64(len(content))
		for _, form := range forms {
			idx := wordIndexes(content, form, true, 1)
			if len(idx) == 0 {
				continue
			}
			out = append(out, model.NewFlagMatch(form, f.path, lineOf(content, idx[0])))
			break
		}
		if len(out) >= m.limits.MaxDefsPerFeature {
			break
		}
	}
	return out
}
