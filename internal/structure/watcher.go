package structure

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/repotag/internal/logfields"
	"git.home.luguber.info/inful/repotag/internal/repoconfig"
)

// DefaultDebounce is the quiet period before a reload fires.
const DefaultDebounce = time.Second

// Reloader is anything that can reload its configuration.
type Reloader interface {
	Reload() error
}

// Watcher monitors configuration documents and triggers debounced reloads.
type Watcher struct {
	root     string
	isDir    bool
	reloader Reloader
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu           sync.Mutex
	stopOnce     sync.Once
	stopChan     chan struct{}
	reloadChan   chan struct{}
	debounceTime time.Duration
	reloadTimer  *time.Timer
	onReload     func(id string, err error)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceTime = d
		}
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithReloadHook is called after every reload attempt.
func WithReloadHook(fn func(id string, err error)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher creates a watcher for root, a configuration directory or file.
func NewWatcher(root string, reloader Reloader, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		root:         abs,
		isDir:        info.IsDir(),
		reloader:     reloader,
		watcher:      fw,
		logger:       slog.Default(),
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
		debounceTime: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins monitoring. A single file is watched through its directory,
// which survives editors that replace the file on save.
func (w *Watcher) Start(ctx context.Context) error {
	if w.isDir {
		err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to watch config directory %s: %w", w.root, err)
		}
	} else if err := w.watcher.Add(filepath.Dir(w.root)); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", filepath.Dir(w.root), err)
	}

	w.logger.Info("Starting configuration watcher", logfields.ConfigPath(w.root))
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping configuration watcher")
		close(w.stopChan)
		w.mu.Lock()
		if w.reloadTimer != nil {
			w.reloadTimer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

// relevant reports whether an event path concerns a configuration document.
func (w *Watcher) relevant(name string) bool {
	if !w.isDir {
		return filepath.Clean(name) == w.root
	}
	if !repoconfig.IsDocumentFile(name) {
		return false
	}
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return false
	}
	return !strings.Contains(rel, "schema")
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.isDir && event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// documents may have landed before the watch was added
					if w.watchTree(event.Name) {
						w.triggerReload()
					}
					continue
				}
			}
			if !w.relevant(event.Name) {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Write):
				w.logger.Debug("Config file write detected", logfields.Path(event.Name))
			case event.Op.Has(fsnotify.Create):
				w.logger.Debug("Config file create detected", logfields.Path(event.Name))
			case event.Op.Has(fsnotify.Remove):
				w.logger.Warn("Config file removed", logfields.Path(event.Name))
			case event.Op.Has(fsnotify.Rename):
				w.logger.Debug("Config file rename detected", logfields.Path(event.Name))
			default:
				continue
			}
			w.triggerReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", logfields.Error(err))
		}
	}
}

// watchTree adds dir and its subdirectories to the watch and reports
// whether any relevant document already exists below it.
func (w *Watcher) watchTree(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(path), logfields.Error(err))
			}
			return nil
		}
		if w.relevant(path) {
			found = true
		}
		return nil
	})
	return found
}

// reloadLoop restarts the debounce timer on every trigger.
func (w *Watcher) reloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return
		case <-w.stopChan:
			w.stopTimer()
			return
		case <-w.reloadChan:
			w.mu.Lock()
			if w.reloadTimer != nil {
				w.reloadTimer.Stop()
			}
			w.reloadTimer = time.AfterFunc(w.debounceTime, w.performReload)
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.reloadTimer != nil {
		w.reloadTimer.Stop()
	}
}

// triggerReload requests a debounced reload.
func (w *Watcher) triggerReload() {
	select {
	case w.reloadChan <- struct{}{}:
	default:
		// reload already pending
	}
}

// performReload reloads the configuration. Failures leave the active
// configuration in place and are only logged.
func (w *Watcher) performReload() {
	id := uuid.NewString()
	logger := w.logger.With(logfields.ReloadID(id), logfields.ConfigPath(w.root))
	logger.Info("Reloading configuration")
	start := time.Now()
	err := w.reloader.Reload()
	if err != nil {
		logger.Error("Failed to reload configuration, keeping previous", logfields.Error(err))
	} else {
		logger.Info("Configuration reloaded successfully",
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	}
	if w.onReload != nil {
		w.onReload(id, err)
	}
}
