package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"toolbench/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the time to wait after the last observed change
// before notifying. Regeneration touches many files at once; one
// notification covers the burst.
const DefaultDebounceInterval = 500 * time.Millisecond

// DefaultWatchInterval is the fallback polling cadence when fsnotify is not
// available.
const DefaultWatchInterval = 30 * time.Second

// WatcherConfig holds configuration for the wrapper tree watcher.
type WatcherConfig struct {
	// Dir is the wrapper tree root to watch.
	Dir string

	// WatchInterval is the fallback polling interval when fsnotify is not
	// available.
	WatchInterval time.Duration

	// OnChange is called, debounced, when the wrapper tree changes.
	OnChange func()
}

// Watcher monitors the wrapper tree and reports changes, typically into
// Index.Invalidate. It uses fsnotify on the root and each server directory,
// with a fallback to polling when fsnotify is unavailable.
type Watcher struct {
	mu sync.Mutex

	config WatcherConfig

	// fsWatcher is the fsnotify watcher (nil when polling)
	fsWatcher *fsnotify.Watcher

	// stopCh signals the watcher to stop
	stopCh chan struct{}

	// running indicates if the watcher is active
	running bool

	// lastSignature tracks the tree state for fallback polling
	lastSignature treeSignature

	// debounceTimer coalesces bursts of changes
	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewWatcher creates a wrapper tree watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.WatchInterval == 0 {
		config.WatchInterval = DefaultWatchInterval
	}
	return &Watcher{config: config}
}

// Start begins watching for wrapper tree changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("Watcher", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges()
		return nil
	}

	w.fsWatcher = watcher

	if err := w.addTreeWatches(); err != nil {
		logging.Warn("Watcher", "Failed to watch %s, falling back to polling: %v", w.config.Dir, err)
		w.fsWatcher.Close()
		w.fsWatcher = nil
		go w.pollForChanges()
		return nil
	}

	// Capture channels before releasing lock to avoid races with Stop
	eventsCh := w.fsWatcher.Events
	errorsCh := w.fsWatcher.Errors

	go w.processEvents(eventsCh, errorsCh)

	logging.Info("Watcher", "Started watching %s for wrapper changes", w.config.Dir)
	return nil
}

// addTreeWatches registers the root and every current server directory.
// Directories swapped in later are picked up from their create events.
func (w *Watcher) addTreeWatches() error {
	if err := w.fsWatcher.Add(w.config.Dir); err != nil {
		return err
	}

	entries, err := os.ReadDir(w.config.Dir)
	if err != nil {
		// Root watch is in place; subdirectories will surface as events.
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		subdir := filepath.Join(w.config.Dir, entry.Name())
		if err := w.fsWatcher.Add(subdir); err != nil {
			logging.Debug("Watcher", "Could not watch %s: %v", subdir, err)
		}
	}
	return nil
}

// processEvents handles fsnotify events. The channels are passed as
// parameters to avoid race conditions with Stop.
func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "fsnotify error")
		}
	}
}

// handleEvent processes a single fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// A directory swapped into the root is a freshly generated server tree;
	// start watching inside it.
	if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) == w.config.Dir {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.mu.Lock()
			if w.fsWatcher != nil {
				if err := w.fsWatcher.Add(event.Name); err != nil {
					logging.Debug("Watcher", "Could not watch %s: %v", event.Name, err)
				}
			}
			w.mu.Unlock()
		}
	}

	logging.Debug("Watcher", "Wrapper tree changed: %s (%s)", event.Name, event.Op)
	w.triggerDebounced()
}

// triggerDebounced invokes OnChange after the debounce period.
func (w *Watcher) triggerDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(DefaultDebounceInterval, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback()
		}
	})
}

// pollForChanges implements fallback polling when fsnotify is not available.
func (w *Watcher) pollForChanges() {
	ticker := time.NewTicker(w.config.WatchInterval)
	defer ticker.Stop()

	w.mu.Lock()
	w.lastSignature = signTree(w.config.Dir)
	w.mu.Unlock()

	for {
		select {
		case <-w.stopCh:
			return

		case <-ticker.C:
			current := signTree(w.config.Dir)
			w.mu.Lock()
			changed := current != w.lastSignature
			w.lastSignature = current
			w.mu.Unlock()

			if changed {
				logging.Debug("Watcher", "Wrapper tree changes detected via polling")
				w.triggerDebounced()
			}
		}
	}
}

// treeSignature is a cheap fingerprint of the wrapper tree for polling.
type treeSignature struct {
	files  int
	latest time.Time
	size   int64
}

// signTree walks the tree and fingerprints it by file count, total size and
// newest modification time.
func signTree(dir string) treeSignature {
	var sig treeSignature
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		sig.files++
		sig.size += info.Size()
		if info.ModTime().After(sig.latest) {
			sig.latest = info.ModTime()
		}
		return nil
	})
	return sig
}

// Stop gracefully stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("Watcher", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info("Watcher", "Stopped wrapper tree watcher")
	return nil
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
