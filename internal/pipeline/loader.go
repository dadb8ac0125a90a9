package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ppiankov/driftscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// Loader collects documentation files under a repository root
type Loader struct {
	root         string
	docGlobs     []string
	excludeGlobs []string
	maxBytes     int64
	concurrency  int
}

// NewLoader creates a new Loader with the given configuration
func NewLoader(root string, scan model.ScanConfig, maxBytes int64, concurrency int) *Loader {
	if concurrency <= 0 {
		concurrency = 1
	}
	if maxBytes <= 0 {
		maxBytes = model.DefaultLimits().MaxDocumentBytes
	}
	return &Loader{
		root:         root,
		docGlobs:     scan.DocGlobs,
		excludeGlobs: scan.ExcludeGlobs,
		maxBytes:     maxBytes,
		concurrency:  concurrency,
	}
}

// LoadResult contains the loaded documents in path order
type LoadResult struct {
	Documents []model.Document
	Skipped   int // oversized or unreadable
}

// Collect returns the sorted, slash-separated paths matching the document
// globs. Unreadable directories and symlink loops are passed over; only a
// malformed pattern is an error.
func (l *Loader) Collect() ([]string, error) {
	fsys := os.DirFS(l.root)
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range l.docGlobs {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || l.Excluded(m) {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Excluded reports whether rel matches one of the exclude globs
func (l *Loader) Excluded(rel string) bool {
	for _, g := range l.excludeGlobs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// Load reads every collected document concurrently
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	paths, err := l.Collect()
	if err != nil {
		return nil, err
	}

	contents := make([]*string, len(paths))
	var skipped atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, ok := l.read(p)
			if !ok {
				skipped.Add(1)
				return nil
			}
			contents[i] = &text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	result := &LoadResult{Documents: make([]model.Document, 0, len(paths)), Skipped: int(skipped.Load())}
	for i, p := range paths {
		if contents[i] != nil {
			result.Documents = append(result.Documents, model.Document{Path: p, Content: *contents[i]})
		}
	}
	return result, nil
}

// read loads one document, refusing files larger than maxBytes
func (l *Loader) read(rel string) (string, bool) {
	f, err := os.Open(filepath.Join(l.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	if info.Size() > l.maxBytes {
		return "", false
	}

	// Read body with size limit
	body, err := io.ReadAll(io.LimitReader(f, l.maxBytes+1))
	if err != nil || int64(len(body)) > l.maxBytes {
		return "", false
	}
	return string(body), true
}

// Watched reports whether a changed path is a document the loader would read
func (l *Loader) Watched(rel string) bool {
	rel = filepath.ToSlash(rel)
	if l.Excluded(rel) {
		return false
	}
	for _, pattern := range l.docGlobs {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
