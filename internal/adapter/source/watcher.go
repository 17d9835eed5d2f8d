package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/grainlens/uploader/internal/domain/entity"
	"github.com/grainlens/uploader/internal/infrastructure/config"
	"github.com/grainlens/uploader/internal/usecase"
)

// ErrWatcherStopped is returned when a stopped watcher is started again
var ErrWatcherStopped = errors.New("watcher stopped")

// Selector receives selection events
type Selector interface {
	Select(ctx context.Context, sel *entity.Selection) *usecase.Pending
}

// WatcherStats tracks watcher activity
type WatcherStats struct {
	EventsSeen int
	Selections int
	Errors     int
	LastPath   string
	LastEvent  time.Time
}

// Watcher turns image files dropped into a directory into selections.
// Files are selected once they have been quiet for the debounce window;
// files settling in the same tick collapse to the most recent one.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	selector    Selector
	dir         string
	extensions  []string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	tick        time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stopped     bool
	closeOnce   sync.Once
	logger      *zap.Logger

	stats WatcherStats
}

// NewWatcher creates a watcher for dir
func NewWatcher(dir string, selector Selector, cfg config.WatchConfig, logger *zap.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	extensions := cfg.Extensions
	if len(extensions) == 0 {
		extensions = entity.DefaultImageExtensions
	}

	tick := 100 * time.Millisecond
	if cfg.Debounce > 0 && cfg.Debounce < tick {
		tick = cfg.Debounce
	}

	return &Watcher{
		watcher:     fw,
		selector:    selector,
		dir:         dir,
		extensions:  extensions,
		debounceMap: make(map[string]time.Time),
		debounceDur: cfg.Debounce,
		tick:        tick,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		logger:      logger.With(zap.String("dir", dir)),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return ErrWatcherStopped
	}
	if w.running {
		return nil
	}

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.running = true

	go w.run(ctx)

	w.logger.Info("Watching directory for images", zap.Strings("extensions", w.extensions))
	return nil
}

// Stop stops the watcher and waits for the event loop to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	alreadyStopped := w.stopped
	w.stopped = true
	w.mu.Unlock()

	if running && !alreadyStopped {
		close(w.stopCh)
		<-w.doneCh
	}

	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("Failed to close file watcher", zap.Error(err))
		}
	})
}

// Done is closed when the event loop exits
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// Stats returns a snapshot of watcher activity
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Watcher context cancelled")
			return

		case <-w.stopCh:
			w.logger.Debug("Watcher stop signal received")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !entity.IsAllowedImage(event.Name, w.extensions) {
		return
	}

	w.logger.Debug("Image file event", zap.String("path", event.Name), zap.String("op", event.Op.String()))

	now := time.Now()
	w.mu.Lock()
	w.stats.EventsSeen++
	w.stats.LastPath = event.Name
	w.stats.LastEvent = now
	w.debounceMap[event.Name] = now
	w.mu.Unlock()
}

// processDebounced selects the newest file whose events have settled
func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var (
		latest     string
		latestTime time.Time
	)
	for path, at := range w.debounceMap {
		if now.Sub(at) < w.debounceDur {
			continue
		}
		delete(w.debounceMap, path)
		if latest == "" || at.After(latestTime) {
			latest, latestTime = path, at
		}
	}
	w.mu.Unlock()

	if latest == "" {
		return
	}
	w.selectFile(ctx, latest)
}

func (w *Watcher) selectFile(ctx context.Context, path string) {
	file, err := entity.ReadSelectedFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.logger.Debug("File removed before it settled", zap.String("path", path))
			return
		}
		w.logger.Error("Failed to read image file", zap.String("path", path), zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	sel := entity.NewSelection(file)
	if w.selector.Select(ctx, sel) == nil {
		w.logger.Debug("Selection ignored", zap.String("path", path))
		return
	}

	w.logger.Info("Selected file",
		zap.String("selection_id", sel.ID.String()),
		zap.String("path", path),
		zap.Int("bytes", file.Size()),
	)
	w.mu.Lock()
	w.stats.Selections++
	w.mu.Unlock()
}
