// Package config loads folio's user preferences from ~/.folio/config.toml.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	dark "github.com/thiagokokada/dark-mode-go"
)

// FileName is the TOML config file inside the folio directory.
const FileName = "config.toml"

// HomeEnv overrides the folio directory (used by tests and containers).
const HomeEnv = "FOLIO_HOME"

// UserConfig is the on-disk configuration.
type UserConfig struct {
	// Theme is "dark" (default), "light" or "system"
	Theme string `toml:"theme"`

	// DataFile points at a TOML or YAML portfolio dataset. Empty uses the
	// built-in dataset.
	DataFile string `toml:"data_file"`

	Search    SearchSettings    `toml:"search"`
	Web       WebSettings       `toml:"web"`
	Contact   ContactSettings   `toml:"contact"`
	Analytics AnalyticsSettings `toml:"analytics"`
	Logs      LogSettings       `toml:"logs"`
}

// SearchSettings controls the search overlay.
type SearchSettings struct {
	// OpenKey opens the overlay when no editable control has focus (default "/")
	OpenKey string `toml:"open_key"`

	// MaxResults caps how many matches the overlay lists (default 10)
	MaxResults int `toml:"max_results"`

	// Suggestions enables the "did you mean" line on empty results
	Suggestions *bool `toml:"suggestions"`
}

// GetSuggestions defaults to true.
func (s SearchSettings) GetSuggestions() bool {
	if s.Suggestions == nil {
		return true
	}
	return *s.Suggestions
}

// WebSettings configures `folio serve`.
type WebSettings struct {
	Listen   string `toml:"listen"`
	Token    string `toml:"token"`
	ReadOnly bool   `toml:"read_only"`
}

// ContactSettings configures the contact form relay.
type ContactSettings struct {
	// Endpoint is the form relay URL (Formspree-compatible JSON POST)
	Endpoint string `toml:"endpoint"`

	// RatePerMinute limits submissions per process (default 3)
	RatePerMinute float64 `toml:"rate_per_minute"`

	// Burst is the limiter bucket size (default 1)
	Burst int `toml:"burst"`

	TimeoutSeconds int `toml:"timeout_seconds"`
}

// AnalyticsSettings mirrors the per-feature tracking switches. Nil means on.
type AnalyticsSettings struct {
	Enabled            *bool `toml:"enabled"`
	PageViews          *bool `toml:"page_views"`
	Events             *bool `toml:"events"`
	OutboundLinks      *bool `toml:"outbound_links"`
	FormSubmissions    *bool `toml:"form_submissions"`
	SocialInteractions *bool `toml:"social_interactions"`
}

// LogSettings tunes the debug log.
type LogSettings struct {
	Level        string `toml:"level"`
	Format       string `toml:"format"`
	MaxSizeMB    int    `toml:"max_size_mb"`
	MaxBackups   int    `toml:"max_backups"`
	MaxAgeDays   int    `toml:"max_age_days"`
	Compress     bool   `toml:"compress"`
	RingBufferMB int    `toml:"ring_buffer_mb"`
}

// DefaultFormRelay is the relay the original contact form posted to.
const DefaultFormRelay = "https://formspree.io/f/mkgjkdbw"

var defaultUserConfig = UserConfig{
	Theme: "dark",
	Search: SearchSettings{
		OpenKey:    "/",
		MaxResults: 10,
	},
	Web: WebSettings{
		Listen: "127.0.0.1:8462",
	},
	Contact: ContactSettings{
		Endpoint:       DefaultFormRelay,
		RatePerMinute:  3,
		Burst:          1,
		TimeoutSeconds: 15,
	},
}

// Default returns a copy of the built-in configuration.
func Default() *UserConfig {
	c := defaultUserConfig
	return &c
}

var (
	cacheMu sync.RWMutex
	cache   *UserConfig
)

// Dir returns the folio state directory (~/.folio or $FOLIO_HOME).
func Dir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home directory: %w", err)
	}
	return filepath.Join(home, ".folio"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads and caches the user config. A missing file yields defaults. On a
// parse error the defaults are cached and returned together with the error so
// the caller can report it.
func Load() (*UserConfig, error) {
	cacheMu.RLock()
	if cache != nil {
		defer cacheMu.RUnlock()
		return cache, nil
	}
	cacheMu.RUnlock()

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cache != nil {
		return cache, nil
	}

	path, err := Path()
	if err != nil {
		cache = Default()
		return cache, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cache = Default()
		return cache, nil
	}

	cfg, err := LoadFile(path)
	if err != nil {
		cache = Default()
		return cache, err
	}
	cache = cfg
	return cache, nil
}

// LoadFile parses a config file without touching the cache. Unset values are
// filled from the defaults.
func LoadFile(path string) (*UserConfig, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config.toml parse error: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *UserConfig) normalize() {
	switch c.Theme {
	case "dark", "light", "system":
	default:
		c.Theme = "dark"
	}
	if c.Search.OpenKey == "" {
		c.Search.OpenKey = defaultUserConfig.Search.OpenKey
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = defaultUserConfig.Search.MaxResults
	}
	if c.Web.Listen == "" {
		c.Web.Listen = defaultUserConfig.Web.Listen
	}
	if c.Contact.Endpoint == "" {
		c.Contact.Endpoint = DefaultFormRelay
	}
	if c.Contact.RatePerMinute <= 0 {
		c.Contact.RatePerMinute = defaultUserConfig.Contact.RatePerMinute
	}
	if c.Contact.Burst <= 0 {
		c.Contact.Burst = defaultUserConfig.Contact.Burst
	}
	if c.Contact.TimeoutSeconds <= 0 {
		c.Contact.TimeoutSeconds = defaultUserConfig.Contact.TimeoutSeconds
	}
}

// Reload drops the cache and reads the file again.
func Reload() (*UserConfig, error) {
	ClearCache()
	return Load()
}

// ClearCache forgets the cached config; the next Load reads from disk.
func ClearCache() {
	cacheMu.Lock()
	cache = nil
	cacheMu.Unlock()
}

// Save writes cfg atomically (temp file, fsync, rename) and clears the cache.
func Save(cfg *UserConfig) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# folio configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("config: write temp: %w", err)
	}
	if f, err := os.Open(tmp); err == nil {
		_ = f.Sync()
		f.Close()
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: rename: %w", err)
	}

	ClearCache()
	return nil
}

// ResolveTheme maps the configured theme to "dark" or "light", asking the OS
// when the theme is "system". Detection failures fall back to dark.
func (c *UserConfig) ResolveTheme() string {
	if c.Theme != "system" {
		if c.Theme == "light" {
			return "light"
		}
		return "dark"
	}
	isDark, err := dark.IsDarkMode()
	if err != nil || isDark {
		return "dark"
	}
	return "light"
}
