// Package catalog owns the live portfolio dataset and its search index.
// Readers take immutable snapshots; a reload builds a fresh snapshot and
// swaps it in whole, so a reader never sees a half-built index.
package catalog

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/folio-sh/folio/internal/logging"
	"github.com/folio-sh/folio/internal/portfolio"
	"github.com/folio-sh/folio/internal/search"
)

var dataLog = logging.ForComponent(logging.CompData)

// Snapshot is one immutable dataset plus the index built from it.
type Snapshot struct {
	Data     *portfolio.Data
	Index    *search.Index
	Version  uint64
	Source   string // data file path, or "" for the built-in dataset
	LoadedAt time.Time
}

// Catalog hands out the current snapshot and notifies subscribers when it
// changes.
type Catalog struct {
	path    string
	current atomic.Pointer[Snapshot]
	version atomic.Uint64

	subsMu sync.Mutex
	subs   map[chan *Snapshot]struct{}
}

// Open loads path (or the built-in dataset when path is empty) and builds
// the first snapshot. Any data problem is returned; callers treat it as
// fatal at startup.
func Open(path string) (*Catalog, error) {
	data, err := portfolio.Resolve(path)
	if err != nil {
		return nil, err
	}
	c := &Catalog{path: path, subs: make(map[chan *Snapshot]struct{})}
	if _, err := c.install(data); err != nil {
		return nil, err
	}
	return c, nil
}

// New wraps an already loaded dataset. Reload re-reads nothing for a
// catalog created this way.
func New(data *portfolio.Data) (*Catalog, error) {
	c := &Catalog{subs: make(map[chan *Snapshot]struct{})}
	if _, err := c.install(data); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the watched data file, if any.
func (c *Catalog) Path() string { return c.path }

// Current returns the live snapshot.
func (c *Catalog) Current() *Snapshot {
	return c.current.Load()
}

// Reload re-reads the data file. On error the current snapshot stays.
func (c *Catalog) Reload() (*Snapshot, error) {
	if c.path == "" {
		return c.Current(), nil
	}
	data, err := portfolio.LoadFile(c.path)
	if err != nil {
		dataLog.Warn("reload_rejected",
			slog.String("path", c.path),
			slog.String("error", err.Error()))
		return c.Current(), err
	}
	return c.install(data)
}

// Replace swaps in data directly.
func (c *Catalog) Replace(data *portfolio.Data) (*Snapshot, error) {
	return c.install(data)
}

func (c *Catalog) install(data *portfolio.Data) (*Snapshot, error) {
	ix, err := search.Build(data)
	if err != nil {
		return c.Current(), fmt.Errorf("catalog: build index: %w", err)
	}
	snap := &Snapshot{
		Data:     data,
		Index:    ix,
		Version:  c.version.Add(1),
		Source:   c.path,
		LoadedAt: time.Now(),
	}
	c.current.Store(snap)
	dataLog.Info("index_built",
		slog.Uint64("version", snap.Version),
		slog.Int("records", ix.Len()),
		slog.String("source", snap.Source))
	c.notify(snap)
	return snap, nil
}

// Subscribe returns a channel receiving each new snapshot. Only the latest
// pending snapshot is kept for slow readers. Call cancel to stop.
func (c *Catalog) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 1)
	c.subsMu.Lock()
	c.subs[ch] = struct{}{}
	c.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, ch)
			close(ch)
			c.subsMu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (c *Catalog) Subscribers() int {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	return len(c.subs)
}

func (c *Catalog) notify(snap *Snapshot) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for ch := range c.subs {
		// drop a stale pending snapshot in favour of the new one
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
