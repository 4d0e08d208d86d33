// Package watch monitors a data directory for newly arrived granules and
// triggers recomputation after the directory settles.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the directory must stay quiet before a
// trigger fires. Granule downloads arrive in bursts of paired files.
const DefaultDebounce = 2 * time.Second

// Watcher triggers a callback when granule files land in a directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	log      *slog.Logger
}

// New creates a watcher for dir. A non-positive debounce falls back to
// DefaultDebounce.
func New(dir string, debounce time.Duration, log *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{dir: dir, debounce: debounce, log: log}
}

// Run watches the directory until ctx is cancelled, calling fn after each
// burst of .nc file events. Returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.log.Info("watching for granules", "dir", w.dir, "debounce", w.debounce)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("granule event", "op", event.Op.String(), "file", event.Name)
			pending = time.After(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case <-pending:
			pending = nil
			fn(ctx)
		}
	}
}

// relevant reports whether the event could mean a new or changed granule.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".nc") {
		return false
	}
	return event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Rename)
}
