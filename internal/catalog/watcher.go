package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a catalog directory whenever a definition file changes and
// publishes each rebuilt Catalog on Updates.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	updates  chan *Catalog
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload. Non-positive values
// keep the default.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger used for reload diagnostics.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher for dir. Call Run to start it.
func NewWatcher(dir string, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("catalog: create watcher: %w", err)
	}
	w := &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		watcher:  fw,
		updates:  make(chan *Catalog, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Updates delivers a Catalog after the initial load and after every reload
// that produced one. It is closed when Run returns.
func (w *Watcher) Updates() <-chan *Catalog {
	return w.updates
}

// Run loads the catalog once, then watches for changes until ctx is done.
// It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.updates)
	defer w.watcher.Close()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("catalog: watch %s: %w", w.dir, err)
	}
	w.logger.Debug("watching catalog", "dir", w.dir)

	if !w.reload(ctx) {
		return nil
	}

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("catalog change", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)

		case <-timerC:
			timerC = nil
			if !w.reload(ctx) {
				return nil
			}
		}
	}
}

// reload rebuilds the catalog and publishes it. It returns false only when
// ctx ended while publishing.
func (w *Watcher) reload(ctx context.Context) bool {
	result, errs := Load(w.dir, LoadModeCollectAll)
	for _, err := range errs {
		w.logger.Warn("catalog load error", "error", err)
	}
	if result == nil {
		return true
	}

	cat := New(result.Definitions, w.logger)
	select {
	case w.updates <- cat:
		return true
	case <-ctx.Done():
		return false
	}
}

func relevant(event fsnotify.Event) bool {
	if !IsDefinitionFile(event.Name) {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
