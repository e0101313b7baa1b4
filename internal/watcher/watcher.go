// Package watcher triggers corpus rebuilds when the dataset files change on
// disk.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes a dataset directory and invokes onChange after writes to
// the watched files settle. Editors and sync tools produce bursts of events;
// the debounce window collapses each burst into one rebuild.
type Watcher struct {
	dir       string
	basenames map[string]bool
	debounce  time.Duration
	onChange  func(ctx context.Context)
	logger    *zap.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// New creates a watcher for the given basenames inside dir.
func New(dir string, basenames []string, debounce time.Duration, onChange func(ctx context.Context), logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	names := make(map[string]bool, len(basenames))
	for _, b := range basenames {
		names[b] = true
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:       dir,
		basenames: names,
		debounce:  debounce,
		onChange:  onChange,
		logger:    logger,
		fsw:       fsw,
		done:      make(chan struct{}),
	}, nil
}

// Start runs the event loop until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("dataset change detected",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			w.logger.Info("dataset changed, rebuilding corpus")
			w.onChange(ctx)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	return w.basenames[filepath.Base(event.Name)]
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsw.Close()
}
