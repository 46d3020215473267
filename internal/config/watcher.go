package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 150 * time.Millisecond

// ReloadedMsg carries a freshly loaded config after the file changed.
type ReloadedMsg struct {
	Config *Config
	Err    error
}

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	events    chan ReloadedMsg
	stop      chan struct{}
	debounce  *time.Timer
	mu        sync.Mutex
	closed    bool
}

// NewWatcher watches the directory holding path. Editors replace files on
// save, so the directory is watched rather than the file itself.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		path:      filepath.Clean(path),
		events:    make(chan ReloadedMsg, 1),
		stop:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer func() {
		w.mu.Lock()
		w.closed = true
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
	}()

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.debounce = time.AfterFunc(reloadDebounce, w.reload)
			w.mu.Unlock()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Debug("config watcher", "err", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFrom(w.path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	// Keep only the newest result if the previous one was not consumed.
	select {
	case <-w.events:
	default:
	}
	w.events <- ReloadedMsg{Config: cfg, Err: err}
}

// Listen waits for the next reload.
func (w *Watcher) Listen() tea.Cmd {
	events := w.events
	return func() tea.Msg {
		return <-events
	}
}

// Stop shuts down the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	close(w.stop)
	w.fsWatcher.Close()
}
