package evidence

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ppiankov/driftscan/internal/cache"
	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/snapshot"
	"github.com/ppiankov/driftscan/internal/worker"
)

// SourceReader reads repository files for literal scans. Oversized, binary or
// unreadable files are skipped and remembered; contents are cached.
type SourceReader struct {
	root         string
	maxFileBytes int64
	cache        cache.Cache
	limiter      *worker.Limiter
	skipped      sync.Map

	filesRead       atomic.Int64
	filesSkipped    atomic.Int64
	bytesRead       atomic.Int64
	budgetExhausted atomic.Int64
}

// ReaderOption configures a SourceReader
type ReaderOption func(*SourceReader)

// WithContentCache replaces the default in-memory content cache
func WithContentCache(c cache.Cache) ReaderOption {
	return func(r *SourceReader) { r.cache = c }
}

// WithLimiter throttles disk reads per scope
func WithLimiter(l *worker.Limiter) ReaderOption {
	return func(r *SourceReader) { r.limiter = l }
}

// NewSourceReader creates a reader rooted at root
func NewSourceReader(root string, maxFileBytes int64, opts ...ReaderOption) *SourceReader {
	if maxFileBytes <= 0 {
		maxFileBytes = model.DefaultLimits().MaxFileBytes
	}
	r := &SourceReader{
		root:         root,
		maxFileBytes: maxFileBytes,
		cache:        cache.NewMemoryCache(10*time.Minute, 5*time.Minute),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns the contents of a repository-relative file
func (r *SourceReader) Read(ctx context.Context, rel string) (string, bool) {
	if r == nil || r.root == "" {
		return "", false
	}
	rel = snapshot.CleanPath(rel)
	if rel == "" {
		return "", false
	}
	if _, skip := r.skipped.Load(rel); skip {
		return "", false
	}
	key := "src:" + rel
	if data, ok := r.cache.Get(key); ok {
		return string(data), true
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, rel); err != nil {
			return "", false
		}
	}

	full := filepath.Join(r.root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() || info.Size() > r.maxFileBytes {
		r.skip(rel)
		return "", false
	}
	data, err := os.ReadFile(full)
	if err != nil || int64(len(data)) > r.maxFileBytes || isBinary(data) {
		r.skip(rel)
		return "", false
	}

	r.filesRead.Add(1)
	r.bytesRead.Add(int64(len(data)))
	_ = r.cache.Set(key, data, 0)
	return string(data), true
}

func (r *SourceReader) skip(rel string) {
	if _, loaded := r.skipped.LoadOrStore(rel, struct{}{}); !loaded {
		r.filesSkipped.Add(1)
	}
}

// NoteBudgetExhausted records a scan that stopped at a cap
func (r *SourceReader) NoteBudgetExhausted() {
	r.budgetExhausted.Add(1)
}

// Stats returns the read counters
func (r *SourceReader) Stats() model.ScanStats {
	return model.ScanStats{
		FilesRead:       r.filesRead.Load(),
		FilesSkipped:    r.filesSkipped.Load(),
		BytesRead:       r.bytesRead.Load(),
		BudgetExhausted: r.budgetExhausted.Load(),
	}
}

func isBinary(data []byte) bool {
	if len(data) > 8000 {
		data = data[:8000]
	}
	return bytes.IndexByte(data, 0) >= 0
}
