package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Component names attached to every record emitted through ForComponent.
const (
	CompUI        = "ui"
	CompSearch    = "search"
	CompKeys      = "keys"
	CompContact   = "contact"
	CompAnalytics = "analytics"
	CompStorage   = "storage"
	CompWeb       = "web"
	CompConfig    = "config"
	CompData      = "data"
)

// LogFileName is the rotated log file written inside Config.LogDir.
const LogFileName = "debug.log"

// Config holds logging configuration.
type Config struct {
	// LogDir is the directory for log files (e.g. ~/.folio)
	LogDir string

	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string

	// Format is "json" (default) or "text"
	Format string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// RingBufferSize is the in-memory crash buffer size in bytes (default: 4MB)
	RingBufferSize int

	// AggregateIntervalSecs is how often batched key events are summarised (default: 30)
	AggregateIntervalSecs int

	// Debug enables file logging even without an explicit LogDir override.
	Debug bool
}

func (c *Config) applyDefaults() {
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = 14
	}
	if c.RingBufferSize <= 0 {
		c.RingBufferSize = 4 * 1024 * 1024
	}
	if c.AggregateIntervalSecs <= 0 {
		c.AggregateIntervalSecs = 30
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	mu         sync.RWMutex
	root       *slog.Logger
	ring       *RingBuffer
	agg        *Aggregator
	rotatingFW *lumberjack.Logger
)

// Init configures the process-wide logger. Without Debug the TUI owns the
// terminal, so everything is discarded.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	cfg.applyDefaults()

	if !cfg.Debug || cfg.LogDir == "" {
		root = slog.New(slog.NewJSONHandler(io.Discard, nil))
		ring = NewRingBuffer(1024)
		agg = NewAggregator(nil, cfg.AggregateIntervalSecs)
		return
	}

	rotatingFW = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, LogFileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	ring = NewRingBuffer(cfg.RingBufferSize)
	out := io.MultiWriter(rotatingFW, ring)

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "text" {
		root = slog.New(slog.NewTextHandler(out, opts))
	} else {
		root = slog.New(slog.NewJSONHandler(out, opts))
	}

	agg = NewAggregator(root, cfg.AggregateIntervalSecs)
	agg.Start()
}

// Logger returns the root logger. Safe to call before Init.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return root
}

// ForComponent returns a logger tagged with component=name. The handler is
// resolved at log time, so package-level loggers declared before Init still
// reach the configured sink.
func ForComponent(name string) *slog.Logger {
	return slog.New(&lateHandler{component: name})
}

type lateHandler struct {
	component string
	attrs     []slog.Attr
	group     string
}

func (h *lateHandler) resolve() slog.Handler {
	hd := Logger().Handler().WithAttrs([]slog.Attr{slog.String("component", h.component)})
	if len(h.attrs) > 0 {
		hd = hd.WithAttrs(h.attrs)
	}
	if h.group != "" {
		hd = hd.WithGroup(h.group)
	}
	return hd
}

func (h *lateHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return Logger().Handler().Enabled(ctx, level)
}

func (h *lateHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.resolve().Handle(ctx, r)
}

func (h *lateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &lateHandler{component: h.component, attrs: merged, group: h.group}
}

func (h *lateHandler) WithGroup(name string) slog.Handler {
	return &lateHandler{component: h.component, attrs: h.attrs, group: name}
}

// Aggregate counts a high-frequency event (keystrokes, cursor moves) and
// emits one summary per interval instead of one record per call.
func Aggregate(component, event string, fields ...slog.Attr) {
	mu.RLock()
	a := agg
	mu.RUnlock()
	if a != nil {
		a.Record(component, event, fields...)
	}
}

// DumpRingBuffer writes the most recent log output to path.
func DumpRingBuffer(path string) error {
	mu.RLock()
	r := ring
	mu.RUnlock()
	if r == nil {
		return nil
	}
	return r.DumpToFile(path)
}

// Shutdown flushes pending summaries and closes the log file.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()

	if agg != nil {
		agg.Stop()
		agg = nil
	}
	if rotatingFW != nil {
		_ = rotatingFW.Close()
		rotatingFW = nil
	}
	root = nil
	ring = nil
}
