package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/contre95/musevault/src/features/config"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file has to stay quiet before it is reloaded.
const DefaultDebounce = 500 * time.Millisecond

// Loader reads a config file.
type Loader func(path string) (*config.Config, error)

// Watcher reloads the config file whenever it changes on disk and pushes the
// result into the config manager.
type Watcher struct {
	watcher       *fsnotify.Watcher
	manager       *config.Manager
	load          Loader
	path          string
	debounce      time.Duration
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	stopOnce      sync.Once
	stopChan      chan struct{}
	eventChan     chan<- ReloadEvent
}

// NewWatcher creates a config file watcher. eventChan may be nil.
func NewWatcher(manager *config.Manager, path string, eventChan chan<- ReloadEvent) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	return &Watcher{
		watcher:   watcher,
		manager:   manager,
		load:      config.ReadFile,
		path:      abs,
		debounce:  DefaultDebounce,
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// SetDebounce changes the quiet period. Must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start begins watching. The directory is watched rather than the file so that
// editors replacing the file atomically are still noticed.
func (w *Watcher) Start(ctx context.Context) error {
	slog.Info("Starting config watcher", "path", w.path)
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.watchLoop(ctx)
	slog.Info("Config watcher started successfully")
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		slog.Info("Stopping config watcher")
		close(w.stopChan)

		w.debounceMutex.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
			w.debounceTimer = nil
		}
		w.debounceMutex.Unlock()

		w.watcher.Close()
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			w.Stop()
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	slog.Debug("Config file changed", "op", event.Op.String())

	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	event := ReloadEvent{Path: w.path, Timestamp: time.Now()}
	cfg, err := w.load(w.path)
	if err != nil {
		slog.Error("Config reload failed, keeping current configuration", "path", w.path, "error", err)
		event.Err = err
	} else {
		w.manager.Update(cfg)
		slog.Info("Configuration reloaded", "path", w.path)
	}

	if w.eventChan == nil {
		return
	}
	select {
	case w.eventChan <- event:
	default:
		slog.Warn("Event channel full, dropping reload event", "path", w.path)
	}
}
