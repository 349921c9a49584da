package statedb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Outbox statuses.
const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("statedb: not found")

// OutboxRow is one contact form submission.
type OutboxRow struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	Status    string
	Error     string
	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveOutbox inserts or replaces a submission.
func (s *StateDB) SaveOutbox(r *OutboxRow) error {
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = OutboxPending
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO contact_outbox
			(id, name, email, subject, message, status, error, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.Email, r.Subject, r.Message, r.Status, r.Error, r.Attempts,
		r.CreatedAt.UnixMilli(), r.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("statedb: save outbox: %w", err)
	}
	return nil
}

// MarkOutbox records the outcome of a delivery attempt.
func (s *StateDB) MarkOutbox(id, status, errMsg string) error {
	res, err := s.db.Exec(`
		UPDATE contact_outbox
		SET status = ?, error = ?, attempts = attempts + 1, updated_at = ?
		WHERE id = ?
	`, status, errMsg, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("statedb: mark outbox: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: outbox %s", ErrNotFound, id)
	}
	return nil
}

// GetOutbox loads one submission.
func (s *StateDB) GetOutbox(id string) (*OutboxRow, error) {
	row := s.db.QueryRow(`
		SELECT id, name, email, subject, message, status, error, attempts, created_at, updated_at
		FROM contact_outbox WHERE id = ?
	`, id)
	r, err := scanOutbox(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: outbox %s", ErrNotFound, id)
	}
	return r, err
}

// ListOutbox returns submissions, newest first. An empty status lists all.
func (s *StateDB) ListOutbox(status string, limit int) ([]*OutboxRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT id, name, email, subject, message, status, error, attempts, created_at, updated_at
		FROM contact_outbox
		WHERE ? = '' OR status = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`, status, status, limit)
	if err != nil {
		return nil, fmt.Errorf("statedb: list outbox: %w", err)
	}
	defer rows.Close()

	var out []*OutboxRow
	for rows.Next() {
		r, err := scanOutbox(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// OutboxCounts returns the number of submissions per status.
func (s *StateDB) OutboxCounts() (map[string]int, error) {
	rows, err := s.db.Query("SELECT status, COUNT(*) FROM contact_outbox GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("statedb: outbox counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOutbox(sc scanner) (*OutboxRow, error) {
	r := &OutboxRow{}
	var created, updated int64
	if err := sc.Scan(&r.ID, &r.Name, &r.Email, &r.Subject, &r.Message,
		&r.Status, &r.Error, &r.Attempts, &created, &updated); err != nil {
		return nil, err
	}
	r.CreatedAt = time.UnixMilli(created)
	r.UpdatedAt = time.UnixMilli(updated)
	return r, nil
}
