// Package watcher reloads the collection when the movie or tag trees change
// on disk. Notifications are debounced: a reload runs once the trees have
// been quiet for the settle delay.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader is the part of the collection the watcher drives.
type Reloader interface {
	Reload(ctx context.Context) error
	Roots() (movieDir, tagDir string)
}

// Watcher monitors the movie root, the tag root and every tag directory.
type Watcher struct {
	logger *slog.Logger
	opts   Options
	target Reloader
	fs     *fsnotify.Watcher

	mu      sync.Mutex // protects timer and changes
	timer   *time.Timer
	changes int

	trigger  chan struct{}
	events   chan Event
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for target. Nothing is watched until Start.
func New(logger *slog.Logger, target Reloader, opts Options) (*Watcher, error) {
	opts.setDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:  logger,
		opts:    opts,
		target:  target,
		fs:      fsw,
		trigger: make(chan struct{}, 1),
		events:  make(chan Event, 16),
		done:    make(chan struct{}),
	}, nil
}

// Start adds the watches and processes notifications until ctx is canceled
// or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.syncWatches(); err != nil {
		return err
	}

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.reloadLoop(ctx)

	movieDir, tagDir := w.target.Roots()
	w.logger.Info("watching collection",
		"movie_dir", movieDir,
		"tag_dir", tagDir,
		"settle_delay", w.opts.SettleDelay,
	)

	select {
	case <-ctx.Done():
	case <-w.done:
	}
	return nil
}

// Stop stops the watcher and releases resources. It is safe to call more
// than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		err = w.fs.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}

// Events returns the channel of reload outcomes. Events are dropped when
// nobody keeps up with the channel.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// syncWatches watches both roots and every tag directory. Adding a path
// that is already watched is a no-op, so this runs after every reload to
// pick up new tags.
func (w *Watcher) syncWatches() error {
	movieDir, tagDir := w.target.Roots()

	for _, root := range []string{movieDir, tagDir} {
		if err := w.fs.Add(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}

	entries, err := os.ReadDir(tagDir)
	if err != nil {
		return fmt.Errorf("list tag directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || w.opts.shouldIgnore(entry.Name()) {
			continue
		}
		path := filepath.Join(tagDir, entry.Name())
		if path == movieDir {
			continue
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("failed to watch tag directory", "path", path, "error", err)
			continue
		}
		w.logger.Debug("added watch", "path", path)
	}
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// handleEvent (re)arms the settle timer for any relevant change.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || w.opts.shouldIgnore(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.changes++
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.SettleDelay, w.fire)
}

// fire queues a reload; one queued reload covers any number of timers.
func (w *Watcher) fire() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-w.trigger:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	w.mu.Lock()
	changes := w.changes
	w.changes = 0
	w.mu.Unlock()

	event := Event{Type: EventReloaded, Changes: changes}

	if err := w.target.Reload(ctx); err != nil {
		w.logger.Error("reload after filesystem change failed", "changes", changes, "error", err)
		event.Type = EventReloadFailed
		event.Err = err
	} else {
		w.logger.Info("reloaded after filesystem change", "changes", changes)
		if err := w.syncWatches(); err != nil {
			w.logger.Warn("failed to refresh watches", "error", err)
		}
	}

	event.At = time.Now()
	select {
	case w.events <- event:
	default:
		w.logger.Debug("dropped watcher event", "type", event.Type.String())
	}
}
