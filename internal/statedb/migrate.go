package statedb

import (
	"database/sql"
	"fmt"
	"strconv"
)

// migration upgrades the schema from version-1 to version.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS metadata (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS analytics_events (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id TEXT NOT NULL DEFAULT '',
				kind       TEXT NOT NULL,
				category   TEXT NOT NULL DEFAULT '',
				action     TEXT NOT NULL DEFAULT '',
				label      TEXT NOT NULL DEFAULT '',
				route      TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_events_created ON analytics_events(created_at)`,
			`CREATE TABLE IF NOT EXISTS contact_outbox (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL,
				email      TEXT NOT NULL,
				subject    TEXT NOT NULL,
				message    TEXT NOT NULL,
				status     TEXT NOT NULL DEFAULT 'pending',
				error      TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "outbox attempts",
		stmts: []string{
			`ALTER TABLE contact_outbox ADD COLUMN attempts INTEGER NOT NULL DEFAULT 0`,
			`CREATE INDEX IF NOT EXISTS idx_outbox_status ON contact_outbox(status)`,
		},
	},
}

// SchemaVersion is the version Migrate brings a database to.
var SchemaVersion = migrations[len(migrations)-1].version

// Migrate applies every pending migration in one transaction.
func (s *StateDB) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(migrations[0].stmts[0]); err != nil {
		return fmt.Errorf("statedb: create metadata: %w", err)
	}

	current, err := schemaVersion(tx)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("statedb: schema version %d is newer than supported %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("statedb: migration %d (%s): %w", m.version, m.name, err)
			}
		}
		current = m.version
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)",
		strconv.Itoa(current),
	); err != nil {
		return fmt.Errorf("statedb: set schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("statedb: commit migrate: %w", err)
	}
	return nil
}

// Version returns the schema version recorded in the database.
func (s *StateDB) Version() (int, error) {
	val, err := s.GetMeta("schema_version")
	if err != nil || val == "" {
		return 0, err
	}
	return strconv.Atoi(val)
}

func schemaVersion(tx *sql.Tx) (int, error) {
	var val string
	err := tx.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&val)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("statedb: read schema version: %w", err)
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("statedb: bad schema version %q: %w", val, err)
	}
	return v, nil
}
