package statedb

import (
	"fmt"
	"time"
)

// EventRow is one recorded analytics event.
type EventRow struct {
	ID        int64
	SessionID string
	Kind      string // page_view, event, form_submission, outbound
	Category  string
	Action    string
	Label     string
	Route     string
	CreatedAt time.Time
}

// EventCount aggregates events sharing kind, category and action.
type EventCount struct {
	Kind     string `json:"kind"`
	Category string `json:"category,omitempty"`
	Action   string `json:"action,omitempty"`
	Label    string `json:"label,omitempty"`
	Count    int    `json:"count"`
}

// InsertEvent appends an event and returns its row id.
func (s *StateDB) InsertEvent(e *EventRow) (int64, error) {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := s.db.Exec(`
		INSERT INTO analytics_events (session_id, kind, category, action, label, route, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.SessionID, e.Kind, e.Category, e.Action, e.Label, e.Route, created.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("statedb: insert event: %w", err)
	}
	return res.LastInsertId()
}

// RecentEvents returns up to limit events, newest first.
func (s *StateDB) RecentEvents(limit int) ([]*EventRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, session_id, kind, category, action, label, route, created_at
		FROM analytics_events ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("statedb: recent events: %w", err)
	}
	defer rows.Close()

	var out []*EventRow
	for rows.Next() {
		r := &EventRow{}
		var created int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Kind, &r.Category, &r.Action, &r.Label, &r.Route, &created); err != nil {
			return nil, fmt.Errorf("statedb: scan event: %w", err)
		}
		r.CreatedAt = time.UnixMilli(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountEvents groups events recorded at or after since. Page views are
// grouped by route (returned in Label); other kinds by category, action and
// label. Highest counts come first.
func (s *StateDB) CountEvents(since time.Time) ([]EventCount, error) {
	rows, err := s.db.Query(`
		SELECT kind, category, action,
		       CASE WHEN kind = 'page_view' THEN route ELSE label END AS lbl,
		       COUNT(*) AS n
		FROM analytics_events
		WHERE created_at >= ?
		GROUP BY kind, category, action, lbl
		ORDER BY n DESC, kind, category, action, lbl
	`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("statedb: count events: %w", err)
	}
	defer rows.Close()

	var out []EventCount
	for rows.Next() {
		var c EventCount
		if err := rows.Scan(&c.Kind, &c.Category, &c.Action, &c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("statedb: scan count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PruneEvents deletes events older than before and reports how many went.
func (s *StateDB) PruneEvents(before time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM analytics_events WHERE created_at < ?", before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("statedb: prune events: %w", err)
	}
	return res.RowsAffected()
}
