package evidence

import (
	"context"
	"sort"

	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/snapshot"
)

type indexedEntry struct {
	entry  snapshot.Entry
	target target
}

// symbolTiers orders symbol candidates by preference. A later tier is only
// consulted when no earlier tier produced an accepted match.
type symbolTiers [3][]indexedEntry

func buildTiers(ix *snapshot.Index) symbolTiers {
	var tiers symbolTiers
	for _, e := range ix.Symbols() {
		ie := indexedEntry{entry: e, target: symbolTarget(e.Name, e.File)}
		if e.Generic || e.Test {
			tiers[1] = append(tiers[1], ie)
		} else {
			tiers[0] = append(tiers[0], ie)
		}
	}
	for _, e := range ix.TestSymbols() {
		tiers[2] = append(tiers[2], indexedEntry{entry: e, target: symbolTarget(e.Name, e.File)})
	}
	return tiers
}

// matchSymbols returns the accepted definitions for a claim, best first,
// capped at maxDefs
func (m *Matcher) matchSymbols(c model.FeatureClaim) []model.Definition {
	for _, tier := range m.tiers {
		var defs []model.Definition
		for _, ie := range tier {
			h := matchTarget(c.Tokens, ie.target)
			if !accepts(c, h) {
				continue
			}
			defs = append(defs, model.Definition{
				File:     ie.entry.File,
				Name:     ie.entry.Name,
				Kind:     ie.entry.Kind,
				Line:     ie.entry.Line,
				Exported: ie.entry.Exported,
				TestOnly: ie.entry.Test,
				Score:    h.score,
			})
		}
		if len(defs) == 0 {
			continue
		}
		sortDefinitions(defs)
		if len(defs) > m.limits.MaxDefsPerFeature {
			defs = defs[:m.limits.MaxDefsPerFeature]
		}
		return defs
	}
	return nil
}

func sortDefinitions(defs []model.Definition) {
	sort.SliceStable(defs, func(i, j int) bool {
		a, b := defs[i], defs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Exported != b.Exported {
			return a.Exported
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Name < b.Name
	})
}

// usage decides whether def is used and collects the references proving it.
// Sources, in order: importers (snapshot counts, then literal scans), the
// repo-wide reference index, an exported definition with any importer, and
// repeated occurrences in the defining file.
func (m *Matcher) usage(ctx context.Context, def model.Definition) (bool, []model.UsageReference) {
	var importers []string
	for _, imp := range m.index.Importers(def.File) {
		if !snapshot.IsTestPath(imp) {
			importers = append(importers, imp)
		}
	}
	if len(importers) > m.limits.MaxFilesScannedPerDef {
		importers = importers[:m.limits.MaxFilesScannedPerDef]
		m.reader.NoteBudgetExhausted()
	}

	var refs []model.UsageReference
	for _, imp := range importers {
		count := m.index.RefCount(imp, def.Name)
		if count == 0 {
			if content, ok := m.reader.Read(ctx, imp); ok {
				count = countWord(content, def.Name)
			}
		}
		if count > 0 {
			refs = append(refs, model.UsageReference{File: imp, Count: count})
		}
	}
	if len(refs) > 0 {
		return true, refs
	}

	for _, rc := range m.index.References(def.Name) {
		if rc.File == def.File || snapshot.IsTestPath(rc.File) {
			continue
		}
		refs = append(refs, model.UsageReference{File: rc.File, Count: rc.Count})
	}
	if len(refs) > 0 {
		return true, refs
	}

	if def.Exported && len(importers) > 0 {
		return true, nil
	}

	if m.index.RefCount(def.File, def.Name) >= 2 {
		return true, nil
	}
	if content, ok := m.reader.Read(ctx, def.File); ok && countWord(content, def.Name) >= 2 {
		return true, nil
	}
	return false, nil
}

// mergeReferences keeps the highest count per file, sorted by count then file
func mergeReferences(refs []model.UsageReference, limit int) []model.UsageReference {
	best := make(map[string]int)
	for _, r := range refs {
		if r.Count > best[r.File] {
			best[r.File] = r.Count
		}
	}
	out := make([]model.UsageReference, 0, len(best))
	for f, c := range best {
		out = append(out, model.UsageReference{File: f, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].File < out[j].File
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
