package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// ChangeEvent describes a config file change. When the changed file fails
// to load, Err carries the parse or validation error and Config and
// Snapshot are nil.
type ChangeEvent struct {
	Path      string
	Config    *Config
	Snapshot  *Snapshot
	Err       error
	Timestamp time.Time
}

// Watcher watches a config file and reloads it on change.
//
// The daemon never applies a reloaded activation decision; the watcher
// exists so divergence between the running decision and the file can be
// reported.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	events   chan ChangeEvent
	stop     chan struct{}
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("watch path must not be empty")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	return &Watcher{
		path:     path,
		debounce: debounce,
		watcher:  fsw,
		events:   make(chan ChangeEvent, 4),
		stop:     make(chan struct{}),
	}, nil
}

// Start begins watching. Changes are delivered on Events() until Stop is
// called or ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	// Watch the directory rather than the file: editors replace files on
	// save and a watch on the old inode would be lost.
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
		// Already stopped
	default:
		close(w.stop)
		_ = w.watcher.Close() // Best-effort cleanup
	}
}

// Events returns the channel for receiving change events.
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

func (w *Watcher) processEvents(ctx context.Context) {
	var pending *time.Timer
	var pendingC <-chan time.Time

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			if w.debounce <= 0 {
				w.reload()
				continue
			}
			if pending == nil {
				pending = time.NewTimer(w.debounce)
				pendingC = pending.C
			} else {
				pending.Reset(w.debounce)
			}
		case <-pendingC:
			pending = nil
			pendingC = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			_ = err // Keep watching
		}
	}
}

// matches reports whether the fs event concerns the watched file.
func (w *Watcher) matches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// reload loads the file and emits a ChangeEvent, dropping the event when
// the channel is full.
func (w *Watcher) reload() {
	ev := ChangeEvent{Path: w.path, Timestamp: time.Now()}

	cfg, snap, err := Load(w.path)
	if err != nil {
		ev.Err = err
	} else {
		ev.Config = cfg
		ev.Snapshot = snap
	}

	select {
	case w.events <- ev:
	default:
	}
}
