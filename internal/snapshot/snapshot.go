// Package snapshot loads the repo-map written by an external indexer and
// derives the read-only dependency and symbol indexes the matcher uses.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

// Snapshot is a validated repo-map: every path is clean and slash-separated,
// every symbol has a name and every count is non-negative.
type Snapshot struct {
	Files        map[string]*File
	Dependencies map[string][]string // importer -> raw import specifiers
	Truncated    bool

	// Skipped lists the entries dropped because they failed to decode
	Skipped []string
}

// File is one indexed source file
type File struct {
	Path       string
	Symbols    []Symbol
	References map[string]int // identifier -> occurrence count
}

// Symbol is a definition declared in a file
type Symbol struct {
	Name     string
	Kind     string // export, function, class, type, constant
	Line     int
	Exported bool
}

// Wire format. Every sub-structure is optional. Entries stay raw so that
// one malformed file only loses that file.
type wireSnapshot struct {
	Files        map[string]json.RawMessage `json:"files"`
	Dependencies map[string]json.RawMessage `json:"dependencies"`
	Truncated    json.RawMessage            `json:"truncated"`
}

type wireFile struct {
	Symbols    wireSymbols     `json:"symbols"`
	References []wireReference `json:"references"`
	Imports    []string        `json:"imports"`
}

type wireSymbols struct {
	Exports   []wireSymbol `json:"exports"`
	Functions []wireSymbol `json:"functions"`
	Classes   []wireSymbol `json:"classes"`
	Types     []wireSymbol `json:"types"`
	Constants []wireSymbol `json:"constants"`
}

type wireSymbol struct {
	Name     string `json:"name"`
	Line     int    `json:"line"`
	Exported *bool  `json:"exported"`
}

type wireReference struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Load reads and parses a snapshot file
func Load(filename string) (*Snapshot, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Parse(data)
}

// Parse decodes and normalizes a snapshot
func Parse(data []byte) (*Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return normalizeWire(w), nil
}

func normalizeWire(w wireSnapshot) *Snapshot {
	s := &Snapshot{
		Files:        make(map[string]*File, len(w.Files)),
		Dependencies: make(map[string][]string),
	}
	if len(w.Truncated) > 0 {
		if err := json.Unmarshal(w.Truncated, &s.Truncated); err != nil {
			// unreadable flag counts as truncated
			s.Truncated = true
			s.Skipped = append(s.Skipped, "truncated")
		}
	}

	// Sorted so that duplicate paths after cleaning merge deterministically
	rawPaths := make([]string, 0, len(w.Files))
	for p := range w.Files {
		rawPaths = append(rawPaths, p)
	}
	sort.Strings(rawPaths)

	for _, raw := range rawPaths {
		p := CleanPath(raw)
		if p == "" {
			continue
		}
		var wf wireFile
		if err := json.Unmarshal(w.Files[raw], &wf); err != nil {
			s.Skipped = append(s.Skipped, "files/"+raw)
			continue
		}
		f, ok := s.Files[p]
		if !ok {
			f = &File{Path: p, References: make(map[string]int)}
			s.Files[p] = f
		}
		addSymbols(f, "export", wf.Symbols.Exports, true)
		addSymbols(f, "function", wf.Symbols.Functions, false)
		addSymbols(f, "class", wf.Symbols.Classes, false)
		addSymbols(f, "type", wf.Symbols.Types, false)
		addSymbols(f, "constant", wf.Symbols.Constants, false)
		for _, r := range wf.References {
			name := strings.TrimSpace(r.Name)
			if name == "" || r.Count <= 0 {
				continue
			}
			f.References[name] += r.Count
		}
		if len(wf.Imports) > 0 {
			s.Dependencies[p] = append(s.Dependencies[p], cleanSpecs(wf.Imports)...)
		}
	}

	rawPaths = rawPaths[:0]
	for p := range w.Dependencies {
		rawPaths = append(rawPaths, p)
	}
	sort.Strings(rawPaths)
	for _, raw := range rawPaths {
		p := CleanPath(raw)
		if p == "" {
			continue
		}
		var specs []string
		if err := json.Unmarshal(w.Dependencies[raw], &specs); err != nil {
			s.Skipped = append(s.Skipped, "dependencies/"+raw)
			continue
		}
		s.Dependencies[p] = append(s.Dependencies[p], cleanSpecs(specs)...)
	}
	for p, specs := range s.Dependencies {
		s.Dependencies[p] = dedupeSorted(specs)
	}
	return s
}

func addSymbols(f *File, kind string, syms []wireSymbol, exportedByDefault bool) {
	for _, ws := range syms {
		name := strings.TrimSpace(ws.Name)
		if name == "" {
			continue
		}
		exported := exportedByDefault
		if ws.Exported != nil {
			exported = *ws.Exported
		}
		line := ws.Line
		if line < 0 {
			line = 0
		}
		f.Symbols = append(f.Symbols, Symbol{Name: name, Kind: kind, Line: line, Exported: exported})
	}
}

func cleanSpecs(specs []string) []string {
	out := make([]string, 0, len(specs))
	for _, sp := range specs {
		sp = strings.Trim(strings.TrimSpace(sp), `"'`)
		if sp != "" {
			out = append(out, sp)
		}
	}
	return out
}

func dedupeSorted(in []string) []string {
	sort.Strings(in)
	out := in[:0]
	for _, v := range in {
		if len(out) == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// CleanPath normalizes a repository-relative path to slash form without a
// leading "./" or "/". Parent references cannot climb above the root.
func CleanPath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || p == "." {
		return ""
	}
	return p
}

// Incomplete reports whether evidence from the snapshot alone may be missing
func (s *Snapshot) Incomplete() bool {
	return s == nil || len(s.Files) == 0 || s.Truncated
}
