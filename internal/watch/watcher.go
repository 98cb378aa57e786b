// Package watch keeps the test tree in step with file changes on disk.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"ktp/internal/logging"
)

// Rescanner is the part of the discovery engine the watcher drives
type Rescanner interface {
	RescanFile(ctx context.Context, path string) error
}

// Watcher subscribes to create, write, remove and rename events under the workspace roots
// and rescans each affected source file once its events settle.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	rescanner   Rescanner
	roots       []string
	skipDirs    map[string]bool
	hasExt      func(path string) bool
	debounceDur time.Duration
	pending     map[string]time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closeOnce   sync.Once
	logger      *zap.Logger
}

// New creates a Watcher. hasExt filters events to recognized source files.
func New(rescanner Rescanner, roots, skipDirs []string, hasExt func(string) bool, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	skip := make(map[string]bool, len(skipDirs))
	for _, d := range skipDirs {
		skip[d] = true
	}
	return &Watcher{
		watcher:     fw,
		rescanner:   rescanner,
		roots:       roots,
		skipDirs:    skip,
		hasExt:      hasExt,
		debounceDur: debounce,
		pending:     make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		logger:      logging.OrNop(logger),
	}, nil
}

// Start registers every directory under the roots and begins the event loop.
// It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, root := range w.roots {
		if err := w.addTree(root); err != nil {
			w.logger.Warn("watch root failed", zap.String("root", root), zap.Error(err))
		}
	}

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the underlying watcher
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("close watcher", zap.Error(err))
		}
	})
}

// addTree watches dir and its subdirectories; fsnotify is not recursive
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Debug("watch dir failed", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounceDur / 2
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
		case <-ticker.C:
			w.flush(ctx, false)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skipDirs[filepath.Base(event.Name)] {
				if err := w.addTree(event.Name); err != nil {
					w.logger.Debug("watch new dir failed", zap.String("dir", event.Name), zap.Error(err))
				}
			}
			return
		}
	}

	if !w.hasExt(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("file event", zap.String("op", event.Op.String()), zap.String("path", event.Name))
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flush rescans paths whose last event is older than the debounce window, or all of them
// when force is set.
func (w *Watcher) flush(ctx context.Context, force bool) {
	now := time.Now()
	var ready []string
	w.mu.Lock()
	for path, at := range w.pending {
		if force || now.Sub(at) >= w.debounceDur {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		if err := w.rescanner.RescanFile(ctx, path); err != nil {
			w.logger.Warn("rescan failed", zap.String("path", path), zap.Error(err))
		}
	}
}
