// Package watcher reports media files appearing in or leaving watched
// folders.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/heimdex/heimdex-editor/internal/logging"
)

type Watcher interface {
	Watch(ctx context.Context, path string) error
	Stop() error
	OnChange(callback func(path string, event EventType))
}

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	}
	return "unknown"
}

// DefaultSettle is how long a file must stay quiet before a create or modify
// is reported, so copies in progress are not probed half written.
const DefaultSettle = 500 * time.Millisecond

// FSWatcher watches folder trees with fsnotify. Hidden directories are
// skipped and new subdirectories are picked up as they appear.
type FSWatcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger
	settle time.Duration
	filter func(name string) bool

	mu       sync.Mutex
	callback func(path string, event EventType)
	pending  map[string]*time.Timer
	created  map[string]bool

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

type Config struct {
	Logger *slog.Logger
	// Settle overrides DefaultSettle when positive.
	Settle time.Duration
	// Filter limits reported files by name. Nil reports everything.
	Filter func(name string) bool
}

func New(cfg Config) (*FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	settle := cfg.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &FSWatcher{
		fs:      w,
		logger:  logging.WithComponent(logging.OrDiscard(cfg.Logger), "watcher"),
		settle:  settle,
		filter:  cfg.Filter,
		pending: make(map[string]*time.Timer),
		created: make(map[string]bool),
		done:    make(chan struct{}),
	}, nil
}

func (w *FSWatcher) OnChange(callback func(path string, event EventType)) {
	w.mu.Lock()
	w.callback = callback
	w.mu.Unlock()
}

// Watch adds path and its visible subdirectories. The event loop runs until
// ctx is done or Stop is called.
func (w *FSWatcher) Watch(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("path is not a directory")
	}
	if err := w.addTree(path); err != nil {
		return err
	}

	w.startOnce.Do(func() { go w.loop(ctx) })
	w.logger.Info("watching folder", "path", logging.SanitizePath(path))
	return nil
}

func (w *FSWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fs.Add(p)
	})
}

func (w *FSWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *FSWatcher) handle(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("failed to watch new folder", "path", logging.SanitizePath(ev.Name), "error", err)
			}
			return
		}
	}

	if w.filter != nil && !w.filter(name) {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.mu.Lock()
		if t, ok := w.pending[ev.Name]; ok {
			t.Stop()
			delete(w.pending, ev.Name)
		}
		delete(w.created, ev.Name)
		w.mu.Unlock()
		w.emit(ev.Name, EventDelete)
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.schedule(ev.Name, ev.Has(fsnotify.Create))
	}
}

// schedule (re)arms the settle timer for path. A file created during the
// quiet period is reported as a create even if writes follow.
func (w *FSWatcher) schedule(path string, create bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if create {
		w.created[path] = true
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		if w.stopped() {
			return
		}
		w.mu.Lock()
		delete(w.pending, path)
		event := EventModify
		if w.created[path] {
			event = EventCreate
			delete(w.created, path)
		}
		w.mu.Unlock()
		w.emit(path, event)
	})
}

// emit drops events once Stop has been called. A settle timer that fired
// just before Stop would otherwise hand the callback a path after shutdown.
func (w *FSWatcher) emit(path string, event EventType) {
	if w.stopped() {
		return
	}
	w.mu.Lock()
	cb := w.callback
	w.mu.Unlock()

	w.logger.Debug("file changed", "path", logging.SanitizePath(path), "event", event.String())
	if cb != nil {
		cb(path, event)
	}
}

func (w *FSWatcher) stopped() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

func (w *FSWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for p, t := range w.pending {
			t.Stop()
			delete(w.pending, p)
		}
		w.mu.Unlock()
		err = w.fs.Close()
		w.logger.Info("watcher stopped")
	})
	return err
}
