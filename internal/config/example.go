package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const exampleConfig = `# folio configuration
# Loaded on startup. Delete a line to fall back to its default.

# "dark", "light" or "system" (follows the OS and updates live)
theme = "dark"

# Portfolio dataset (TOML or YAML). Leave empty for the built-in data.
# The file is watched; valid edits rebuild the search index live.
# data_file = "~/portfolio.toml"

[search]
# Key that opens the search overlay when no text field has focus
open_key = "/"
# Matches listed in the overlay; the rest are summarised as "N more"
max_results = 10
# Offer a "did you mean" hint when nothing matches
suggestions = true

[web]
listen = "127.0.0.1:8462"
# token = "change-me"
read_only = false

[contact]
endpoint = "https://formspree.io/f/mkgjkdbw"
rate_per_minute = 3
burst = 1
timeout_seconds = 15

[analytics]
# enabled = false turns every tracker off
page_views = true
events = true
outbound_links = true
form_submissions = true
social_interactions = true

[logs]
# Only used when FOLIO_DEBUG is set
level = "info"
format = "json"
max_size_mb = 10
max_backups = 3
max_age_days = 14
`

// WriteExample writes a commented config unless one already exists. It
// returns the path and whether a file was written.
func WriteExample() (string, bool, error) {
	path, err := Path()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", false, fmt.Errorf("config: mkdir: %w", err)
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o600); err != nil {
		return "", false, fmt.Errorf("config: write example: %w", err)
	}
	return path, true, nil
}

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
