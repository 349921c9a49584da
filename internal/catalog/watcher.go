package catalog

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/folio-sh/folio/internal/platform"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads the catalog when its data file changes on disk.
type Watcher struct {
	catalog  *Catalog
	watcher  *fsnotify.Watcher
	file     string
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	// onReload runs after every reload attempt (err is nil on success)
	onReload func(*Snapshot, error)
}

// ErrNoDataFile is returned when watching a catalog built from the
// built-in dataset.
var ErrNoDataFile = errors.New("catalog: no data file to watch")

// NewWatcher prepares a watcher for c's data file. The directory is watched
// rather than the file so atomic rename-saves are seen.
func NewWatcher(c *Catalog, onReload func(*Snapshot, error)) (*Watcher, error) {
	if c.Path() == "" {
		return nil, ErrNoDataFile
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	file, err := filepath.Abs(c.Path())
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(file)); err != nil {
		fw.Close()
		return nil, err
	}
	if warn := platform.WatchWarning(file); warn != "" {
		dataLog.Warn("watch_unreliable", slog.String("path", file), slog.String("reason", warn))
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		catalog:  c,
		watcher:  fw,
		file:     file,
		debounce: DefaultDebounce,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		onReload: onReload,
	}, nil
}

// Start runs the event loop until Stop. Must be called in a goroutine.
func (w *Watcher) Start() {
	defer close(w.done)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.file {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			snap, err := w.catalog.Reload()
			if err == nil {
				dataLog.Info("data_file_reloaded",
					slog.String("path", w.file),
					slog.Uint64("version", snap.Version))
			}
			if w.onReload != nil {
				w.onReload(snap, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			dataLog.Warn("data_watcher_error", slog.String("error", err.Error()))
		}
	}
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		w.cancel()
		_ = w.watcher.Close()
	})
}

// Wait blocks until Start has returned.
func (w *Watcher) Wait() {
	<-w.done
}
