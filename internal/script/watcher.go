package script

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// Watcher reloads a Strategy whenever its script file changes on disk. A reload that
// fails to compile is logged and the running program is kept. Removing the file falls
// back to the built-in strategy.
type Watcher struct {
	fs       afero.Fs
	path     string
	strategy *Strategy
	logger   *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	reloads int
}

// NewWatcher watches path on the operating system. fs is used to read the file and is
// normally afero.NewOsFs.
func NewWatcher(fs afero.Fs, path string, strategy *Strategy, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fs:       fs,
		path:     filepath.Clean(path),
		strategy: strategy,
		logger:   logger.With("script", filepath.Base(path)),
	}
}

// Start registers the watch and returns; events are handled in the background until ctx
// is cancelled. The directory is watched rather than the file so that editors that
// replace the file on save are seen.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = watcher
	w.done = make(chan struct{})

	go w.watchFiles(ctx, watcher, w.done)

	w.logger.Debug("Started script watcher", "path", w.path)
	return nil
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Reloads reports how many reloads succeeded.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *Watcher) watchFiles(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer func() {
		watcher.Close()
		w.mu.Lock()
		w.watcher = nil
		w.mu.Unlock()
		close(done)
		w.logger.Debug("Script watcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.handleFileEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Script watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.reload()
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.logger.Info("Script file removed, reverting to built-in strategy")
		w.swap(DefaultScript())
	}
}

func (w *Watcher) reload() {
	src, err := LoadScript(w.fs, w.path)
	if err != nil {
		w.logger.Error("Failed to read modified script", "error", err)
		return
	}
	// Editors often emit several writes per save.
	if cur := w.strategy.Script(); cur != nil && cur.Checksum == src.Checksum {
		return
	}
	w.swap(src)
}

func (w *Watcher) swap(src *Script) {
	if err := w.strategy.Load(src); err != nil {
		w.logger.Error("Failed to reload script, keeping previous version", "error", err)
		return
	}
	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	w.logger.Info("Reloaded script", "source", src.Source, "checksum", src.Checksum[:12])
}
