package snapshot

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/driftscan/internal/lexicon"
)

// Entry is a flattened symbol definition
type Entry struct {
	File     string
	Name     string
	Kind     string
	Line     int
	Exported bool
	Test     bool // test file or test-looking name
	Generic  bool // name too generic to match on unless nothing else does
}

// RefCount counts occurrences of an identifier in one file
type RefCount struct {
	File  string
	Count int
}

// Index is the read-only view the matcher queries. It is built once and is
// safe for concurrent use.
type Index struct {
	snap     *Snapshot
	files    []string
	resolver *Resolver

	reverse map[string][]string // defining file -> sorted importers

	symbols     []Entry // non-test files
	testSymbols []Entry
	refs        map[string][]RefCount // identifier -> per-file counts, sorted by file
}

// NewIndex builds the dependency, symbol and reference indexes. A nil
// snapshot yields an empty index.
func NewIndex(s *Snapshot) *Index {
	if s == nil {
		s = &Snapshot{Files: map[string]*File{}, Dependencies: map[string][]string{}}
	}
	ix := &Index{
		snap:    s,
		reverse: make(map[string][]string),
		refs:    make(map[string][]RefCount),
	}

	for p := range s.Files {
		ix.files = append(ix.files, p)
	}
	sort.Strings(ix.files)
	ix.resolver = NewResolver(ix.files)

	ix.buildDependencies()
	ix.buildSymbols()
	ix.buildReferences()
	return ix
}

func (ix *Index) buildDependencies() {
	importers := make([]string, 0, len(ix.snap.Dependencies))
	for p := range ix.snap.Dependencies {
		importers = append(importers, p)
	}
	sort.Strings(importers)

	reverse := make(map[string]map[string]bool)
	for _, importer := range importers {
		seen := make(map[string]bool)
		for _, spec := range ix.snap.Dependencies[importer] {
			for _, target := range ix.resolver.Resolve(importer, spec) {
				if target == importer || seen[target] {
					continue
				}
				seen[target] = true
				if reverse[target] == nil {
					reverse[target] = make(map[string]bool)
				}
				reverse[target][importer] = true
			}
		}
	}
	for target, set := range reverse {
		list := make([]string, 0, len(set))
		for imp := range set {
			list = append(list, imp)
		}
		sort.Strings(list)
		ix.reverse[target] = list
	}
}

func (ix *Index) buildSymbols() {
	for _, p := range ix.files {
		f := ix.snap.Files[p]
		test := IsTestPath(p)
		seen := make(map[string]bool)
		for _, sym := range f.Symbols {
			if !validSymbolName(sym.Name) {
				continue
			}
			// exports often repeat a function/class entry; keep the first
			key := sym.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			e := Entry{
				File:     p,
				Name:     sym.Name,
				Kind:     sym.Kind,
				Line:     sym.Line,
				Exported: sym.Exported || exportedElsewhere(f.Symbols, sym.Name),
				Test:     test || looksLikeTestName(sym.Name),
				Generic:  lexicon.IsGenericSymbolName(sym.Name),
			}
			if test {
				ix.testSymbols = append(ix.testSymbols, e)
			} else {
				ix.symbols = append(ix.symbols, e)
			}
		}
	}
}

func exportedElsewhere(syms []Symbol, name string) bool {
	for _, s := range syms {
		if s.Name == name && s.Exported {
			return true
		}
	}
	return false
}

func (ix *Index) buildReferences() {
	for _, p := range ix.files {
		for name, count := range ix.snap.Files[p].References {
			ix.refs[name] = append(ix.refs[name], RefCount{File: p, Count: count})
		}
	}
	// files were visited in sorted order, so each list is already sorted
}

var invalidSymbolChars = regexp.MustCompile(`[\s{}()\[\]<>;,"'=]`)

// validSymbolName rejects names an indexer produced from malformed source
func validSymbolName(name string) bool {
	return name != "" && len(name) <= 120 && !invalidSymbolChars.MatchString(name)
}

var testNamePattern = regexp.MustCompile(`^(Test|Benchmark|Fuzz|Example)[A-Z_]|^test_|^(describe|it)$|Mock[A-Z]|^mock|Fake[A-Z]|^fake|Stub[A-Z]`)

func looksLikeTestName(name string) bool {
	return testNamePattern.MatchString(name)
}

var (
	testDirSegments = map[string]bool{
		"test": true, "tests": true, "__tests__": true, "spec": true, "specs": true,
		"testdata": true, "fixtures": true, "__mocks__": true, "e2e": true, "testing": true,
	}
	testFilePattern = regexp.MustCompile(`(_test\.go|\.(test|spec)\.[cm]?[jt]sx?|_spec\.rb|^test_.*\.py|_test\.py|Tests?\.(java|kt|cs|swift)|_test\.rs)$`)
)

// IsTestPath reports whether a repository path holds test code
func IsTestPath(p string) bool {
	p = CleanPath(p)
	if testFilePattern.MatchString(path.Base(p)) {
		return true
	}
	for _, seg := range strings.Split(strings.ToLower(path.Dir(p)), "/") {
		if testDirSegments[seg] {
			return true
		}
	}
	return false
}

// Files returns every indexed file path, sorted
func (ix *Index) Files() []string { return ix.files }

// Importers returns the files importing p, sorted
func (ix *Index) Importers(p string) []string { return ix.reverse[p] }

// Symbols returns definitions from non-test files
func (ix *Index) Symbols() []Entry { return ix.symbols }

// TestSymbols returns definitions from test files
func (ix *Index) TestSymbols() []Entry { return ix.testSymbols }

// References returns per-file occurrence counts of an identifier
func (ix *Index) References(name string) []RefCount { return ix.refs[name] }

// RefCount returns how often name occurs in file p according to the snapshot
func (ix *Index) RefCount(p, name string) int {
	f, ok := ix.snap.Files[p]
	if !ok {
		return 0
	}
	return f.References[name]
}

// Incomplete reports whether the snapshot is empty or was truncated
func (ix *Index) Incomplete() bool { return ix.snap.Incomplete() }
