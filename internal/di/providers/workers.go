package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/tagrs/movietagger/internal/collection"
	"github.com/tagrs/movietagger/internal/config"
	"github.com/tagrs/movietagger/internal/logger"
	"github.com/tagrs/movietagger/internal/watcher"
)

// FileWatcherHandle wraps the file watcher with shutdown capability.
// Watcher is nil when watching is disabled.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the watcher that reloads the collection when
// either root changes.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	c := do.MustInvoke[*collection.Collection](i)

	if !cfg.Library.Watch {
		log.Info("File watcher disabled by configuration")
		return &FileWatcherHandle{}, nil
	}

	w, err := watcher.New(log.WithComponent("watcher").Logger, c, watcher.Options{
		SettleDelay: cfg.Library.WatchSettle,
	})
	if err != nil {
		return nil, err
	}

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("File watcher error", "error", err)
		}
	}()

	// Drain reload outcomes
	go func() {
		for event := range w.Events() {
			if event.Type == watcher.EventReloadFailed {
				log.Warn("automatic reload failed", "error", event.Err, "changes", event.Changes)
				continue
			}
			stats := c.Stats()
			log.Debug("automatic reload finished",
				"changes", event.Changes,
				"movies", stats.Movies,
				"tags", stats.Tags,
			)
		}
	}()

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}
