package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/folio-sh/folio/internal/analytics"
	"github.com/folio-sh/folio/internal/catalog"
	"github.com/folio-sh/folio/internal/config"
	"github.com/folio-sh/folio/internal/contact"
	"github.com/folio-sh/folio/internal/logging"
	"github.com/folio-sh/folio/internal/statedb"
	"github.com/folio-sh/folio/internal/web"
)

// loadConfig returns the user config. A broken file is reported and the
// defaults are used so the portfolio still opens.
func loadConfig() *config.UserConfig {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	return cfg
}

// setupLogging wires the logger from [logs] and FOLIO_DEBUG. The returned
// func flushes and closes the log file.
func setupLogging(cfg *config.UserConfig) func() {
	debugMode := os.Getenv("FOLIO_DEBUG") != ""
	baseDir, err := config.Dir()
	if err != nil {
		logging.Init(logging.Config{})
		return logging.Shutdown
	}

	ls := cfg.Logs
	logCfg := logging.Config{
		Debug:      debugMode,
		LogDir:     baseDir,
		Level:      "debug",
		Format:     "json",
		MaxSizeMB:  ls.MaxSizeMB,
		MaxBackups: ls.MaxBackups,
		MaxAgeDays: ls.MaxAgeDays,
		Compress:   ls.Compress,
	}
	if ls.Level != "" {
		logCfg.Level = ls.Level
	}
	if ls.Format != "" {
		logCfg.Format = ls.Format
	}
	if ls.RingBufferMB > 0 {
		logCfg.RingBufferSize = ls.RingBufferMB * 1024 * 1024
	}
	logging.Init(logCfg)
	// libraries using the standard logger must not write over the TUI
	log.SetFlags(0)
	log.SetOutput(logging.NewBridgeWriter(logging.CompUI))

	// SIGUSR1 dumps the ring buffer for post-mortem debugging
	usr1Chan := make(chan os.Signal, 1)
	signal.Notify(usr1Chan, syscall.SIGUSR1)
	go func() {
		for range usr1Chan {
			dumpPath := filepath.Join(baseDir, fmt.Sprintf("crash-dump-%d.jsonl", time.Now().Unix()))
			if err := logging.DumpRingBuffer(dumpPath); err != nil {
				logging.ForComponent(logging.CompUI).Error("crash_dump_failed",
					slog.String("error", err.Error()))
			} else {
				logging.ForComponent(logging.CompUI).Info("crash_dump_written",
					slog.String("path", dumpPath))
			}
		}
	}()

	return func() {
		signal.Stop(usr1Chan)
		close(usr1Chan)
		logging.Shutdown()
	}
}

// openCatalog loads dataFile, falling back to the configured data file and
// then the built-in dataset.
func openCatalog(cfg *config.UserConfig, dataFile string) (*catalog.Catalog, error) {
	if dataFile == "" {
		dataFile = config.ExpandHome(cfg.DataFile)
	}
	cat, err := catalog.Open(dataFile)
	if err != nil {
		return nil, fmt.Errorf("load portfolio data: %w", err)
	}
	return cat, nil
}

// runtime bundles what the TUI and the server share: the dataset, the state
// database and the services built on it.
type runtime struct {
	cfg     *config.UserConfig
	catalog *catalog.Catalog
	db      *statedb.StateDB // nil when the state database cannot be opened
	tracker *analytics.Tracker
	contact *contact.Service
}

// openRuntime loads the dataset (dataFile overrides the config) and opens
// the state database. A dataset error is fatal; a database error only
// disables analytics persistence and the outbox.
func openRuntime(cfg *config.UserConfig, dataFile string) (*runtime, error) {
	cat, err := openCatalog(cfg, dataFile)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, catalog: cat}
	storeLog := logging.ForComponent(logging.CompStorage)

	if dir, err := config.Dir(); err == nil {
		db, err := statedb.OpenAndMigrate(filepath.Join(dir, statedb.FileName))
		if err != nil {
			storeLog.Warn("statedb_unavailable", slog.String("error", err.Error()))
		} else {
			rt.db = db
		}
	}

	var store analytics.Store
	if rt.db != nil {
		store = rt.db
	}
	rt.tracker = analytics.NewTracker(store, analytics.FlagsFromSettings(cfg.Analytics))

	timeout := time.Duration(cfg.Contact.TimeoutSeconds) * time.Second
	opts := []contact.ServiceOption{
		contact.WithTracker(rt.tracker),
		contact.WithRate(cfg.Contact.RatePerMinute, cfg.Contact.Burst),
	}
	if rt.db != nil {
		opts = append(opts, contact.WithOutbox(rt.db))
	}
	rt.contact = contact.NewService(contact.NewRelay(cfg.Contact.Endpoint, timeout), opts...)
	return rt, nil
}

func (rt *runtime) contactTimeout() time.Duration {
	return time.Duration(rt.cfg.Contact.TimeoutSeconds) * time.Second
}

// stats returns the analytics summary source, or nil without a database.
func (rt *runtime) stats() web.StatsSource {
	if rt.db == nil {
		return nil
	}
	return web.StatsFunc(func(since time.Time) (*analytics.Summary, error) {
		return analytics.Summarize(rt.db, since)
	})
}

// watch starts the data file watcher. It returns nil for the built-in
// dataset.
func (rt *runtime) watch() *catalog.Watcher {
	dataLog := logging.ForComponent(logging.CompData)
	w, err := catalog.NewWatcher(rt.catalog, func(snap *catalog.Snapshot, err error) {
		if err != nil {
			dataLog.Warn("reload_rejected", slog.String("error", err.Error()))
			return
		}
		dataLog.Info("reloaded", slog.Uint64("version", snap.Version))
	})
	if err != nil {
		if err != catalog.ErrNoDataFile {
			dataLog.Warn("watcher_unavailable", slog.String("error", err.Error()))
		}
		return nil
	}
	return w
}

// Close flushes analytics and closes the database.
func (rt *runtime) Close() {
	rt.tracker.Close()
	if rt.db != nil {
		_ = rt.db.Close()
	}
}
