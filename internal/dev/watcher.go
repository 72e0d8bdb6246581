package dev

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/hyperdom/pkg/gsx"
)

// Change is a .gsx file that was written, created or removed.
type Change struct {
	Path    string
	Removed bool
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// Dirs are watched recursively, including directories created later.
	Dirs []string

	// Excluded reports whether a base name is skipped.
	Excluded func(name string) bool

	// Debounce is how long the watcher waits for changes to settle.
	Debounce time.Duration

	Logger *slog.Logger
}

// Watcher reports batches of .gsx changes.
type Watcher struct {
	config   WatcherConfig
	fs       *fsnotify.Watcher
	logger   *slog.Logger
	mu       sync.Mutex
	onChange func([]Change)
	pending  map[string]Change
}

// NewWatcher starts watching the configured directories.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if config.Excluded == nil {
		config.Excluded = func(string) bool { return false }
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		config:  config,
		fs:      fw,
		logger:  logger.With("component", "watcher"),
		pending: make(map[string]Change),
	}
	for _, dir := range config.Dirs {
		if err := w.addTree(dir, false); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// OnChange sets the callback for change batches. It runs on the Run
// goroutine.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// addTree watches root and the directories under it. With report, .gsx
// files found inside are queued as changes: a directory moved into place
// brings its files with it.
func (w *Watcher) addTree(root string, report bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && w.config.Excluded(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return w.fs.Add(path)
		}
		if report && strings.HasSuffix(path, gsx.Ext) {
			w.queue(Change{Path: path})
		}
		return nil
	})
}

func (w *Watcher) queue(c Change) {
	w.mu.Lock()
	w.pending[c.Path] = c
	w.mu.Unlock()
}

// Run delivers change batches until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.config.Debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			w.flush()
		}
	}
}

// handle records an event and reports whether it queued a change.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if w.config.Excluded(name) {
		return false
	}

	if event.Has(fsnotify.Create) && isDir(event.Name) {
		if err := w.addTree(event.Name, true); err != nil {
			w.logger.Warn("watch new directory", "dir", event.Name, "error", err)
		}
		return true
	}
	if !strings.HasSuffix(event.Name, gsx.Ext) {
		return false
	}

	removed := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	w.queue(Change{Path: event.Name, Removed: removed})
	return true
}

func (w *Watcher) flush() {
	w.mu.Lock()
	batch := make([]Change, 0, len(w.pending))
	for _, c := range w.pending {
		batch = append(batch, c)
	}
	w.pending = make(map[string]Change)
	fn := w.onChange
	w.mu.Unlock()

	if len(batch) == 0 || fn == nil {
		return
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	w.logger.Debug("changes", "count", len(batch))
	fn(batch)
}

// Close stops watching. Run returns after Close.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
