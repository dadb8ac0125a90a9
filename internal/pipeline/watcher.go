package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ignoredWatchDirs are never watched
var ignoredWatchDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
}

// Watcher reports debounced changes to documents and the snapshot
type Watcher struct {
	root     string
	loader   *Loader
	snapshot string // slash path relative to root
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]bool
}

// NewWatcher creates a watcher over root. snapshotPath may be absolute.
func NewWatcher(root string, loader *Loader, snapshotPath string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	rel := ""
	if snapshotPath != "" {
		if r, err := filepath.Rel(root, snapshotPath); err == nil {
			rel = filepath.ToSlash(r)
		}
	}

	return &Watcher{
		root:     root,
		loader:   loader,
		snapshot: rel,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]bool),
	}, nil
}

// Run watches until ctx is done, calling onChange with the sorted relative
// paths that changed during each debounce window
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	defer w.watcher.Close()

	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			if changed := w.flush(); len(changed) > 0 {
				onChange(ctx, changed)
			}
		}
	}
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := d.Name()
		if path != root && (ignoredWatchDirs[base] || strings.HasPrefix(base, ".")) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			base := filepath.Base(event.Name)
			if !ignoredWatchDirs[base] && !strings.HasPrefix(base, ".") {
				_ = w.addWatchesRecursive(event.Name)
			}
			return
		}
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if !w.relevant(rel) {
		return
	}

	w.pendingMu.Lock()
	w.pending[rel] = true
	w.pendingMu.Unlock()
	w.logger.Debug("change detected", "path", rel, "op", event.Op.String())
}

func (w *Watcher) relevant(rel string) bool {
	if w.snapshot != "" && rel == w.snapshot {
		return true
	}
	return w.loader.Watched(rel)
}

// flush drains the pending set
func (w *Watcher) flush() []string {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]bool)
	sort.Strings(changed)
	return changed
}
